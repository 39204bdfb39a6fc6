package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-retention/agents"
	"salonpro-retention/repository"
	"salonpro-retention/services"
	"salonpro-retention/utils"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, agents.ErrUnknownAgent):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoHistory):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps service errors onto HTTP status codes. Persistence
// details are not echoed to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		utils.RespondWithError(c, status, "Internal server error")
		return
	}
	utils.RespondWithError(c, status, err.Error())
}
