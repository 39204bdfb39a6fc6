package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salonpro-retention/services"
	"salonpro-retention/utils"
)

// SchedulingController serves cancellation predictions, booking patterns
// and schedule gaps.
type SchedulingController struct {
	svc   *services.SchedulingService
	limit int
}

func NewSchedulingController(svc *services.SchedulingService, defaultLimit int) *SchedulingController {
	return &SchedulingController{svc: svc, limit: defaultLimit}
}

type PredictInput struct {
	AppointmentID *uuid.UUID `json:"appointmentId"`
}

type OutcomeInput struct {
	Outcome     string  `json:"outcome" binding:"required"`
	ActionTaken *string `json:"actionTaken"`
}

type AnalyzeGapsInput struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type FillGapInput struct {
	ClientID uuid.UUID `json:"clientId" binding:"required"`
}

func (sc *SchedulingController) ListPredictions(c *gin.Context) {
	out, err := sc.svc.GetAtRiskAppointments(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

// Predict scores one appointment when appointmentId is given, otherwise
// every upcoming appointment of the business.
func (sc *SchedulingController) Predict(c *gin.Context) {
	var input PredictInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}
	ctx := c.Request.Context()
	businessID := utils.BusinessID(c)

	if input.AppointmentID != nil {
		res, err := sc.svc.PredictCancellation(ctx, businessID, *input.AppointmentID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.RespondWithData(c, http.StatusCreated, res)
		return
	}

	res, err := sc.svc.PredictAllUpcoming(ctx, businessID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, res)
}

func (sc *SchedulingController) RecordOutcome(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input OutcomeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	out, err := sc.svc.RecordOutcome(c.Request.Context(), utils.BusinessID(c), id, input.Outcome, input.ActionTaken)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (sc *SchedulingController) ListGaps(c *gin.Context) {
	out, err := sc.svc.GetOpenGaps(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (sc *SchedulingController) AnalyzeGaps(c *gin.Context) {
	var input AnalyzeGapsInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}
	res, err := sc.svc.AnalyzeGaps(c.Request.Context(), utils.BusinessID(c), input.StartDate, input.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, res)
}

func (sc *SchedulingController) FillGap(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input FillGapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	out, err := sc.svc.FillGap(c.Request.Context(), utils.BusinessID(c), id, input.ClientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (sc *SchedulingController) GetRecommendations(c *gin.Context) {
	out, err := sc.svc.GetRecommendations(c.Request.Context(), utils.BusinessID(c), utils.QueryLimit(c, sc.limit))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

// GetOptimalSlots ranks open slots for ?date=YYYY-MM-DD, using the booking
// pattern of ?clientId when given.
func (sc *SchedulingController) GetOptimalSlots(c *gin.Context) {
	var clientID uuid.UUID
	if raw := c.Query("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid clientId")
			return
		}
		clientID = id
	}
	out, err := sc.svc.GetOptimalSlots(c.Request.Context(), utils.BusinessID(c), clientID, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (sc *SchedulingController) UpdatePatterns(c *gin.Context) {
	clientID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := sc.svc.UpdateClientPatterns(c.Request.Context(), utils.BusinessID(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (sc *SchedulingController) GetPattern(c *gin.Context) {
	clientID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := sc.svc.GetClientPattern(c.Request.Context(), utils.BusinessID(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}
