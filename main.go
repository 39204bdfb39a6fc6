package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-retention/agents"
	"salonpro-retention/cache"
	"salonpro-retention/config"
	"salonpro-retention/controllers"
	"salonpro-retention/events"
	"salonpro-retention/llm"
	"salonpro-retention/logger"
	"salonpro-retention/notify"
	"salonpro-retention/repository"
	"salonpro-retention/routes"
	"salonpro-retention/scheduler"
	"salonpro-retention/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	store := repository.New(db, log)

	alerter := notify.NewAlerter(cfg.SlackBotToken, cfg.SlackAlertChannel, log)
	sinks := []events.Sink{events.NewDBSink(store)}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kafka.Close()
		sinks = append(sinks, kafka)
	}
	recorder := events.NewRecorder(store, alerter, log, sinks...)

	dashboardCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "salonpro", cfg.DashboardCacheTTL())
	if closer, ok := dashboardCache.(io.Closer); ok {
		defer closer.Close()
	}

	deps := services.Deps{
		Recorder:  recorder,
		Messenger: notify.NewMessenger(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TwilioWhatsAppNumber, log),
		Composer:  llm.NewComposer(cfg.AnthropicAPIKey, cfg.AnthropicModel, log),
		Cache:     dashboardCache,
		CacheTTL:  cfg.DashboardCacheTTL(),
		Location:  cfg.Location,
		Log:       log,
	}
	retention := services.NewRetentionService(store, deps)
	scheduling := services.NewSchedulingService(store, deps)
	advisor := services.NewAdvisor(retention, scheduling)

	registry := agents.NewRegistry(agents.Services{
		Retention:          retention,
		Scheduling:         scheduling,
		RecommendationSize: cfg.RecommendationLimit,
	})
	runner := agents.NewRunner(registry, store, log)

	jobs := scheduler.New(store, retention, scheduling, cfg.Location, log)
	if err := jobs.Start(cfg.RetentionSchedule, cfg.SchedulingSchedule); err != nil {
		log.Fatal("scheduler start failed", "error", err)
	}

	r := routes.SetupRouter(cfg, log, routes.Handlers{
		Retention:       controllers.NewRetentionController(retention, cfg.RecommendationLimit),
		Scheduling:      controllers.NewSchedulingController(scheduling, cfg.RecommendationLimit),
		Recommendations: controllers.NewRecommendationController(advisor, cfg.RecommendationLimit),
		Agents:          controllers.NewAgentController(runner, store),
		Cron:            controllers.NewCronController(jobs),
	})
	if cfg.LogMode != "production" {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server listening", "port", cfg.Port, "agents", registry.Types())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	jobs.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
