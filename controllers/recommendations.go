package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-retention/services"
	"salonpro-retention/utils"
)

type RecommendationController struct {
	advisor *services.Advisor
	limit   int
}

func NewRecommendationController(advisor *services.Advisor, defaultLimit int) *RecommendationController {
	return &RecommendationController{advisor: advisor, limit: defaultLimit}
}

// GetRecommendations merges retention and scheduling suggestions into one
// ranked list.
func (rc *RecommendationController) GetRecommendations(c *gin.Context) {
	out, err := rc.advisor.Recommendations(c.Request.Context(), utils.BusinessID(c), utils.QueryLimit(c, rc.limit))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}
