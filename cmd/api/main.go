package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-api-registration/internal/application/registration"
	"github.com/go-api-registration/internal/config"
	"github.com/go-api-registration/internal/infrastructure/awscfg"
	"github.com/go-api-registration/internal/infrastructure/dynamo"
	"github.com/go-api-registration/internal/infrastructure/notify"
	"github.com/go-api-registration/internal/infrastructure/smtp"
	"github.com/go-api-registration/internal/infrastructure/sns"
	"github.com/go-api-registration/internal/pkg/logger"
	"github.com/go-api-registration/internal/pkg/password"
	transporthttp "github.com/go-api-registration/internal/transport/http"
	appmiddleware "github.com/go-api-registration/internal/transport/http/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.AppEnv, ServiceName: "registration"})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		zl.Fatal("aws config", zap.Error(err))
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, zl)

	notifier, err := newNotifier(cfg, awsCfg, zl)
	if err != nil {
		zl.Fatal("notifier", zap.Error(err))
	}

	svc := registration.NewService(registration.ServiceDeps{
		UserRepo:  dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		TokenRepo: dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.Tokens),
		Notifier:  notifier,
		Hasher:    password.NewBcrypt(cfg.BcryptCost),
		Logger:    zl.Named("registration"),
		Config: registration.Config{
			TokenExpiration: cfg.TokenExpiration,
			TokenRetention:  cfg.TokenRetention,
		},
	})

	limiter, closeLimiter := newLimiter(ctx, cfg, zl)
	defer closeLimiter()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Registration: svc,
		Limiter:      limiter,
		Logger:       zl.Named("http"),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

func newNotifier(cfg *config.Config, awsCfg aws.Config, zl *zap.Logger) (registration.Notifier, error) {
	switch cfg.Notifier {
	case "smtp":
		return smtp.NewMailer(cfg), nil
	case "sns":
		if cfg.SNSTopicARN == "" {
			return nil, errors.New("NOTIFIER=sns requires SNS_TOPIC_ARN")
		}
		return sns.NewPublisher(sns.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.SNSTopicARN, cfg.ConfirmationURL), nil
	case "log":
		return notify.NewLog(zl.Named("notify"), cfg.ConfirmationURL), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q", cfg.Notifier)
	}
}

// newLimiter prefers a Redis-backed limiter shared across instances and falls
// back to an in-process one when REDIS_ADDR is unset.
func newLimiter(ctx context.Context, cfg *config.Config, zl *zap.Logger) (appmiddleware.Limiter, func()) {
	if cfg.RedisAddr == "" {
		zl.Info("rate limiting in process")
		return appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		// Requests still pass while Redis is down; RateLimit logs each failure.
		zl.Warn("redis unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	zl.Info("rate limiting via redis", zap.String("addr", cfg.RedisAddr))
	return appmiddleware.NewRedisLimiter(client, "registration:rl", cfg.RateLimitRPS, cfg.RateLimitBurst), func() { _ = client.Close() }
}
