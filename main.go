package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/friendsvc/api/rest"
	"github.com/kasuganosora/friendsvc/api/sse"
	apiws "github.com/kasuganosora/friendsvc/api/ws"
	"github.com/kasuganosora/friendsvc/audit"
	"github.com/kasuganosora/friendsvc/broker"
	"github.com/kasuganosora/friendsvc/config"
	dbadapter "github.com/kasuganosora/friendsvc/db"
	"github.com/kasuganosora/friendsvc/events"
	mw "github.com/kasuganosora/friendsvc/middleware"
	"github.com/kasuganosora/friendsvc/model"
	"github.com/kasuganosora/friendsvc/scheduler"
	"github.com/kasuganosora/friendsvc/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbadapter.Close(db)
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	if cfg.Audit.Retention > 0 {
		sched.Every("audit-purge", cfg.Audit.PurgeInterval, func(ctx context.Context) error {
			_, err := auditSvc.Purge(ctx, cfg.Audit.Retention)
			return err
		})
	}

	// ---- Events ----
	ps, err := broker.New(broker.Config{
		RedisAddr:     cfg.Broker.RedisAddr,
		RedisPassword: cfg.Broker.RedisPassword,
		RedisDB:       cfg.Broker.RedisDB,
		LocalBuf:      cfg.Broker.LocalBuf,
	})
	if err != nil {
		log.Fatalf("broker: %v", err)
	}
	defer ps.Close()
	pub := events.NewPublisher(ps, logger)
	if cfg.Broker.RedisAddr != "" {
		logger.Info("Event broker: redis", zap.String("addr", cfg.Broker.RedisAddr))
	} else {
		logger.Info("Event broker: in-process")
	}

	st := store.New(db,
		store.WithLogger(logger),
		store.WithBcryptCost(cfg.Security.BcryptCost),
	)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	r.Use(mw.Audit(auditSvc))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.Request.Context())
		}
		if err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	apirest.Register(r, apirest.NewHandlers(st, pub), mw.IPWhitelist(cfg.Security.PopulateAllowIPs))

	// ---- SSE ----
	sseH := sse.NewHandler(pub, logger)
	r.GET("/events", sseH.ServeSSE)

	// ---- WebSocket ----
	wsH := apiws.NewHandler(pub, cfg.Security.AllowedOrigins, logger)
	r.GET("/ws", wsH.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	sched.Stop()
	auditSvc.Stop(shutdownCtx)
}
