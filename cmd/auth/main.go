package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	myPostgresRepo "github.com/classmate-hq/auth-service/internal/adapters/db/postgres"
	myRedisStore "github.com/classmate-hq/auth-service/internal/adapters/db/redis"
	transporthttp "github.com/classmate-hq/auth-service/internal/adapters/transport/http"
	httpmw "github.com/classmate-hq/auth-service/internal/adapters/transport/http/middleware"
	"github.com/classmate-hq/auth-service/internal/app/auth/authenticator"
	"github.com/classmate-hq/auth-service/internal/app/auth/session"
	apptoken "github.com/classmate-hq/auth-service/internal/app/auth/token"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	domaintoken "github.com/classmate-hq/auth-service/internal/domain/auth/token"
	"github.com/classmate-hq/auth-service/internal/infra/config"
	lg "github.com/classmate-hq/auth-service/internal/infra/log"
	"github.com/classmate-hq/auth-service/internal/infra/migrate"
	"golang.org/x/sync/errgroup"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	cacheStore := myRedisStore.NewRedisCacheStore(redisCli)
	codec := apptoken.NewCodec(cfg)
	auth := authenticator.New(userRepo, cacheStore, cfg, nil)
	sessions := session.New(cacheStore, codec, userRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(httpmw.RateLimitPerIP(50, 100, 10_000, time.Hour))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	guard := httpmw.Authenticate(codec, sessions, userRepo)
	identity := func(c *gin.Context) (model.User, domaintoken.Claims, bool) {
		user, ok := httpmw.CurrentUser(c)
		if !ok {
			return model.User{}, domaintoken.Claims{}, false
		}
		claims, ok := httpmw.CurrentClaims(c)
		return user, claims, ok
	}

	handler := transporthttp.NewHandler(auth, sessions, cfg, validate, zapLog)
	handler.Register(router, guard, identity)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "auth", "status": "ok"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

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

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
