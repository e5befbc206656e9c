package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apperrors "order-intake-service/common/errors"
	"order-intake-service/common/logger"
	"order-intake-service/common/middleware"
	"order-intake-service/controllers"
	"order-intake-service/database"
	"order-intake-service/kafka"
	aws_pkg "order-intake-service/pkg/aws"
	"order-intake-service/repository"
	"order-intake-service/routes"
	"order-intake-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()

	cfg, err := LoadConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// AWS clients are optional; the service runs without them locally.
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)

	var cwWriter *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled && awsErr == nil {
		cwWriter, err = aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.LogGroupName, cfg.ServiceName)
		if err != nil {
			log.Printf("CloudWatch Logs unavailable, logging to stdout only: %v", err)
			cwWriter = nil
		}
	}

	var zapLogger *zap.Logger
	if cwWriter != nil {
		zapLogger, err = logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		zapLogger, err = logger.Initialize(cfg.Env)
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			zapLogger.Fatal("Migration failed", zap.Error(err))
		}
	}

	sinks := services.EventSinks{SNSTopicArn: cfg.OrderSNSTopicArn}
	var metrics aws_pkg.MetricsRecorder
	if awsErr != nil {
		zapLogger.Warn("AWS config unavailable, SNS/SQS/CloudWatch disabled", zap.Error(awsErr))
	} else {
		sinks.SNS = aws_pkg.NewSNSClient(awsCfg)
		if cfg.OrderEventsQueueURL != "" {
			sinks.SQS = aws_pkg.NewSQSProducer(awsCfg, cfg.OrderEventsQueueURL)
		}
		metrics = aws_pkg.NewMetricsClient(awsCfg, "OrderIntake", cfg.CloudWatchEnabled)
		sinks.Metrics = metrics
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, zapLogger)
		sinks.Kafka = producer
	} else {
		zapLogger.Warn("KAFKA_BROKERS not set, order events will not be sent to Kafka")
	}

	store := repository.NewGormStore(db)
	orderService := services.NewOrderService(
		store,
		cfg.Pricing(),
		services.NewEventPublisher(sinks, zapLogger),
		metrics,
		zapLogger,
	)
	productService := services.NewProductService(store, zapLogger)

	rl := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute), cfg.RateLimitBurst, 10*time.Minute)
	stopSweep := make(chan struct{})
	go rl.Run(stopSweep)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.RequestID(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.SecurityHeaders(),
		middleware.RateLimitMiddleware(rl),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.MetricsMiddleware(metrics, cfg.ServiceName),
		middleware.RequestLogger(zapLogger),
		apperrors.ErrorMiddleware(zapLogger),
	)

	routes.RegisterHealthRoutes(r, controllers.NewHealthController(cfg.ServiceName, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}))
	routes.RegisterOrderRoutes(r, controllers.NewOrderController(orderService))
	routes.RegisterProductRoutes(r, controllers.NewProductController(productService))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	zapLogger.Info("Order intake service started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	<-quit
	zapLogger.Info("Shutting down order intake service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopSweep)
	shutdown(shutdownCtx, zapLogger, producer, cwWriter, db)
	zapLogger.Info("Server exited cleanly")
}

func shutdown(ctx context.Context, l *zap.Logger, producer *kafka.Producer, cw *aws_pkg.CloudWatchLogsClient, db *gorm.DB) {
	if producer != nil {
		if err := producer.Close(); err != nil {
			l.Warn("Kafka producer close failed", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		l.Warn("Database close failed", zap.Error(err))
	}
	if cw != nil {
		cw.Close(ctx)
	}
}
