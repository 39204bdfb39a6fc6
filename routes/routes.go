package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"salonpro-retention/config"
	"salonpro-retention/controllers"
	"salonpro-retention/logger"
	"salonpro-retention/utils"
)

// Handlers groups the controllers the router mounts.
type Handlers struct {
	Retention       *controllers.RetentionController
	Scheduling      *controllers.SchedulingController
	Recommendations *controllers.RecommendationController
	Agents          *controllers.AgentController
	Cron            *controllers.CronController
}

func SetupRouter(cfg config.Config, log *logger.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := map[string]bool{}
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
	}))

	r.Use(config.PerformanceLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	cron := r.Group("/cron", utils.CronAuth(cfg.CronSecret))
	{
		cron.POST("/retention", h.Cron.Retention)
		cron.POST("/scheduling", h.Cron.Scheduling)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/recommendations", h.Recommendations.GetRecommendations)

		clients := api.Group("/clients/:id")
		{
			clients.GET("/health", h.Retention.GetClientHealth)
			clients.POST("/health", h.Retention.CalculateClientHealth)
			clients.POST("/vip/evaluate", h.Retention.EvaluateVip)
			clients.GET("/patterns", h.Scheduling.GetPattern)
			clients.POST("/patterns", h.Scheduling.UpdatePatterns)
		}

		retention := api.Group("/retention")
		{
			retention.GET("/dashboard", h.Retention.GetDashboard)
			retention.GET("/at-risk", h.Retention.GetAtRisk)
			retention.GET("/vip", h.Retention.GetVipClients)
			retention.GET("/recommendations", h.Retention.GetRecommendations)
			retention.POST("/health/recalculate", h.Retention.RecalculateHealth)
			retention.POST("/triggers/check", h.Retention.CheckTriggers)

			retention.GET("/vip-tiers", h.Retention.ListTiers)
			retention.POST("/vip-tiers", h.Retention.CreateTier)
			retention.PUT("/vip-tiers/:id", h.Retention.UpdateTier)
			retention.DELETE("/vip-tiers/:id", h.Retention.DeleteTier)

			retention.GET("/campaigns", h.Retention.ListCampaigns)
			retention.POST("/campaigns", h.Retention.CreateCampaign)
			retention.GET("/campaigns/:id", h.Retention.GetCampaign)
			retention.PUT("/campaigns/:id", h.Retention.UpdateCampaign)
			retention.DELETE("/campaigns/:id", h.Retention.DeactivateCampaign)
		}

		scheduling := api.Group("/scheduling")
		{
			scheduling.GET("/predictions", h.Scheduling.ListPredictions)
			scheduling.POST("/predictions", h.Scheduling.Predict)
			scheduling.PATCH("/predictions/:id", h.Scheduling.RecordOutcome)
			scheduling.GET("/gaps", h.Scheduling.ListGaps)
			scheduling.POST("/gaps", h.Scheduling.AnalyzeGaps)
			scheduling.POST("/gaps/:id/fill", h.Scheduling.FillGap)
			scheduling.GET("/recommendations", h.Scheduling.GetRecommendations)
			scheduling.GET("/slots", h.Scheduling.GetOptimalSlots)
		}

		agentsGroup := api.Group("/agents")
		{
			agentsGroup.POST("/:type/tasks", h.Agents.RunTask)
			agentsGroup.GET("/tasks/:id", h.Agents.GetTask)
			agentsGroup.GET("/alerts", h.Agents.ListAlerts)
		}
	}

	return r
}
