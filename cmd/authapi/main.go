package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	myPostgresRepo "github.com/avrorin/auth-api/internal/adapters/db/postgres"
	myRedisRepo "github.com/avrorin/auth-api/internal/adapters/db/redis"
	myHTTP "github.com/avrorin/auth-api/internal/adapters/transport/http"
	"github.com/avrorin/auth-api/internal/auth/service"
	"github.com/avrorin/auth-api/internal/auth/token"
	"github.com/avrorin/auth-api/internal/config"
	lg "github.com/avrorin/auth-api/internal/infra/log"
	"github.com/avrorin/auth-api/internal/infra/migrate"
	"github.com/avrorin/auth-api/internal/mail"
	"github.com/avrorin/auth-api/internal/social"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := validator.New()

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	tokenStore := myRedisRepo.NewRedisRefreshTokenStore(redisCli, cfg.RedisOpTimeout)

	svc := service.NewAuthService(
		userRepo,
		tokenStore,
		token.NewAccessCodec(cfg),
		token.NewRefreshCodec(cfg),
		token.NewResetCodec(cfg),
		mail.NewSMTPSender(cfg),
		social.NewGoogleLogin(cfg),
		cfg,
		validate,
		zapLog,
	)

	handler := myHTTP.NewHandler(svc, zapLog)
	router := myHTTP.NewRouter(handler, svc, cfg, zapLog)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
