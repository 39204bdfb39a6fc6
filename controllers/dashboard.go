package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-retention/services"
	"salonpro-retention/utils"
)

// RetentionController serves client health, VIP tiers, campaigns and the
// retention dashboard.
type RetentionController struct {
	svc   *services.RetentionService
	limit int
}

func NewRetentionController(svc *services.RetentionService, defaultLimit int) *RetentionController {
	return &RetentionController{svc: svc, limit: defaultLimit}
}

func (rc *RetentionController) GetDashboard(c *gin.Context) {
	d, err := rc.svc.GetDashboard(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, d)
}

func (rc *RetentionController) GetAtRisk(c *gin.Context) {
	out, err := rc.svc.GetAtRiskClients(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (rc *RetentionController) GetVipClients(c *gin.Context) {
	out, err := rc.svc.GetVipClients(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (rc *RetentionController) GetRecommendations(c *gin.Context) {
	out, err := rc.svc.GetRecommendations(c.Request.Context(), utils.BusinessID(c), utils.QueryLimit(c, rc.limit))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

// RecalculateHealth rescores every client of the business.
func (rc *RetentionController) RecalculateHealth(c *gin.Context) {
	res, err := rc.svc.CalculateAllHealthScores(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, res)
}

func (rc *RetentionController) GetClientHealth(c *gin.Context) {
	clientID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	h, err := rc.svc.GetHealthScore(c.Request.Context(), utils.BusinessID(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, h)
}

func (rc *RetentionController) CalculateClientHealth(c *gin.Context) {
	clientID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	res, err := rc.svc.CalculateHealthScore(c.Request.Context(), utils.BusinessID(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, res)
}

func (rc *RetentionController) EvaluateVip(c *gin.Context) {
	clientID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	res, err := rc.svc.EvaluateVipStatus(c.Request.Context(), utils.BusinessID(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, res)
}
