package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-retention/models"
	"salonpro-retention/services"
	"salonpro-retention/utils"
)

type CreateCampaignInput struct {
	Name            string              `json:"name" binding:"required"`
	TargetSegment   models.HealthStatus `json:"targetSegment" binding:"required"`
	TriggerType     models.TriggerType  `json:"triggerType" binding:"required"`
	TriggerDays     int                 `json:"triggerDays"`
	MessageTemplate string              `json:"messageTemplate" binding:"required"`
	OfferType       string              `json:"offerType"`
	OfferValue      *float64            `json:"offerValue"`
}

func (rc *RetentionController) ListCampaigns(c *gin.Context) {
	out, err := rc.svc.ListCampaigns(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (rc *RetentionController) GetCampaign(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := rc.svc.GetCampaign(c.Request.Context(), utils.BusinessID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (rc *RetentionController) CreateCampaign(c *gin.Context) {
	var input CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	out, err := rc.svc.CreateCampaign(c.Request.Context(), utils.BusinessID(c), models.RetentionCampaign{
		Name:            input.Name,
		TargetSegment:   input.TargetSegment,
		TriggerType:     input.TriggerType,
		TriggerDays:     input.TriggerDays,
		MessageTemplate: input.MessageTemplate,
		OfferType:       input.OfferType,
		OfferValue:      input.OfferValue,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, out)
}

func (rc *RetentionController) UpdateCampaign(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input services.CampaignUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	out, err := rc.svc.UpdateCampaign(c.Request.Context(), utils.BusinessID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

// DeactivateCampaign keeps the campaign and its triggers but stops new ones.
func (rc *RetentionController) DeactivateCampaign(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := rc.svc.DeactivateCampaign(c.Request.Context(), utils.BusinessID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (rc *RetentionController) CheckTriggers(c *gin.Context) {
	res, err := rc.svc.CheckReengagementTriggers(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, res)
}
