package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-retention/models"
	"salonpro-retention/services"
	"salonpro-retention/utils"
)

type CreateTierInput struct {
	TierName  models.VipTier `json:"tierName" binding:"required"`
	MinSpend  float64        `json:"minSpend"`
	MinVisits int            `json:"minVisits"`
	Benefits  string         `json:"benefits"`
}

func (rc *RetentionController) ListTiers(c *gin.Context) {
	out, err := rc.svc.ListTiers(c.Request.Context(), utils.BusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}

func (rc *RetentionController) CreateTier(c *gin.Context) {
	var input CreateTierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	t, err := rc.svc.CreateTier(c.Request.Context(), utils.BusinessID(c), models.VipTierDefinition{
		TierName:  input.TierName,
		MinSpend:  input.MinSpend,
		MinVisits: input.MinVisits,
		Benefits:  input.Benefits,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, t)
}

func (rc *RetentionController) UpdateTier(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input services.TierUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	t, err := rc.svc.UpdateTier(c.Request.Context(), utils.BusinessID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, t)
}

func (rc *RetentionController) DeleteTier(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := rc.svc.DeleteTier(c.Request.Context(), utils.BusinessID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
