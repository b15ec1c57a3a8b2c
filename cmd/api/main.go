package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "invoicer/api/swagger" // swagger docs
	"invoicer/internal/auth"
	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/events"
	"invoicer/internal/handler"
	"invoicer/internal/logger"
	"invoicer/internal/middleware"
	"invoicer/internal/repository"
	"invoicer/internal/service"
	"invoicer/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title           Invoicer API
// @version         1.0
// @description     Invoices with per-owner gap-free numbering and revenue analytics.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	envErr := godotenv.Load("configs/.env")

	cfg := config.Load()
	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		log.Fatal().Err(err).Msg("invalid log configuration")
	}
	appLog := logger.WithComponent(logger.ComponentApp)
	if envErr != nil {
		appLog.Debug().Msg("no configs/.env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		appLog.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg); err != nil {
		appLog.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config) error {
	appLog := logger.WithComponent(logger.ComponentApp)
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DSN(), database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	appLog.Info().Msg("connected to PostgreSQL")

	// Auth
	issuer := auth.NewIssuer(cfg.Secret(), cfg.JWTTTL)
	googleVerifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	var authenticator auth.Authenticator
	if cfg.GoogleClientID != "" {
		authenticator = auth.NewAuthenticator(issuer, googleVerifier)
	} else {
		appLog.Warn().Msg("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
		authenticator = auth.NewAuthenticator(issuer, nil)
	}

	// Events
	wsHub := websocket.NewHub()
	publishers := events.Multi{wsHub}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				appLog.Warn().Err(err).Msg("failed to close AMQP publisher")
			}
		}()
		publishers = append(publishers, amqpPublisher)
	}

	// Set up dependencies (Repository -> Service -> Handler)
	invoiceRepo := repository.NewInvoiceRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	sequenceService := service.NewSequenceService(counterRepo)
	auditService := service.NewAuditService(auditRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, auditRepo, sequenceService, txManager, publishers)
	analyticsService := service.NewAnalyticsService(invoiceRepo, cfg.Location(), cfg.AnalyticsMonthLocale, time.Now)
	authService := service.NewAuthService(userRepo, googleVerifier, issuer, auditService)

	invoiceHandler := handler.NewInvoiceHandler(invoiceService, sequenceService, authenticator)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, authenticator)
	auditHandler := handler.NewAuditHandler(auditService, authenticator)
	authHandler := handler.NewAuthHandler(authService, authenticator, cfg.JWTTTL, cfg.GinMode == gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DEGRADED"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, authenticator)
	})

	api := router.Group("/api/v1")
	authHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	analyticsHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsHub.Run(gctx)
	})
	g.Go(func() error {
		appLog.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
