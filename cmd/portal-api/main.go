package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"energyplus/onboarding-portal/internal/config"
	"energyplus/onboarding-portal/internal/dashboard"
	"energyplus/onboarding-portal/internal/delivery"
	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/notify"
	"energyplus/onboarding-portal/internal/onboarding"
	"energyplus/onboarding-portal/internal/report"
	"energyplus/onboarding-portal/internal/store"
	"energyplus/onboarding-portal/internal/wizard"
)

func main() {
	// .env is optional
	godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Persistence
	st := store.New(afero.NewOsFs(), cfg.Storage.Dir, logger)

	// Core services
	manager := onboarding.NewManager(st, logger)
	kpiTracker := kpi.NewTracker(st, logger)
	dashboardService := dashboard.NewService(st, kpiTracker, logger)
	deliveryTracker := delivery.NewTracker(st, dashboardService, logger)

	// Reporting
	pdfGenerator := report.NewGenerator(logger)
	excelExporter := report.NewExcelExporter(kpiTracker, logger)

	// Email
	mailer := newMailer(cfg, logger)
	var sender notify.Sender = notify.Noop{}
	if mailer != nil {
		sender = notify.NewEmailSender(mailer, cfg.Email.TeamEmail, logger)
	}

	controller := wizard.NewController(manager, dashboardService, kpiTracker, pdfGenerator, sender, logger)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		onboarding.NewHandler(manager).RegisterRoutes(api)
		wizard.NewHandler(controller).RegisterRoutes(api)
		kpi.NewHandler(kpiTracker).RegisterRoutes(api)
		dashboard.NewHandler(dashboardService, manager).RegisterRoutes(api)
		delivery.NewHandler(deliveryTracker).RegisterRoutes(api)
		report.NewHandler(pdfGenerator, excelExporter, manager, logger).RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Weekly progress digest
	var scheduler *cron.Cron
	if cfg.Digest.Enabled && mailer != nil {
		digest := notify.NewDigest(mailer, dashboardService, cfg.Email.TeamEmail, logger)
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Digest.Schedule, digest.Run); err != nil {
			logger.Fatal("Invalid digest schedule", zap.String("schedule", cfg.Digest.Schedule), zap.Error(err))
		}
		scheduler.Start()
		logger.Info("Digest scheduler started", zap.String("schedule", cfg.Digest.Schedule))
	}

	// Start Server
	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", cfg.Server.GetServerAddr()))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}
	controller.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

// newMailer picks the transport named by the config, or nil when email
// delivery is disabled.
func newMailer(cfg *config.Config, logger *zap.Logger) notify.Mailer {
	switch cfg.Email.Provider {
	case "smtp":
		if m := notify.NewSMTPMailer(cfg.Email, logger); m != nil {
			return m
		}
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Email.SES.Region))
		if err != nil {
			logger.Warn("Failed to load AWS config, email disabled", zap.Error(err))
			return nil
		}
		return notify.NewSESMailer(sesv2.NewFromConfig(awsCfg), cfg.Email, logger)
	case "":
		logger.Info("No email provider configured")
	default:
		logger.Warn("Unknown email provider", zap.String("provider", cfg.Email.Provider))
	}
	return nil
}
