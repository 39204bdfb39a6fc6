package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-retention/scheduler"
	"salonpro-retention/utils"
)

type CronJobs interface {
	RunRetention(ctx context.Context) scheduler.RunSummary
	RunScheduling(ctx context.Context) scheduler.RunSummary
}

// CronController lets an external scheduler trigger the nightly jobs.
type CronController struct {
	jobs CronJobs
}

func NewCronController(jobs CronJobs) *CronController {
	return &CronController{jobs: jobs}
}

func (cc *CronController) Retention(c *gin.Context) {
	utils.RespondWithData(c, http.StatusOK, cc.jobs.RunRetention(c.Request.Context()))
}

func (cc *CronController) Scheduling(c *gin.Context) {
	utils.RespondWithData(c, http.StatusOK, cc.jobs.RunScheduling(c.Request.Context()))
}
