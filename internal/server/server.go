package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nakmuayhub/platform/internal/clock"
	"github.com/nakmuayhub/platform/internal/config"
	"github.com/nakmuayhub/platform/internal/dispatcher"
	"github.com/nakmuayhub/platform/internal/observability/metrics"
	"github.com/nakmuayhub/platform/internal/payment/webhook"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})

	return r
}

func registerGin() *gin.Engine {
	return NewEngine(metrics.HTTP())
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	clock      clock.Clock
	webhookSvc *webhook.Service
	dispatcher *dispatcher.Dispatcher
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	Clock      clock.Clock
	WebhookSvc *webhook.Service
	Dispatcher *dispatcher.Dispatcher
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		clock:      p.Clock,
		webhookSvc: p.WebhookSvc,
		dispatcher: p.Dispatcher,
	}

	svc.registerWebhookRoutes()
	svc.registerCronRoutes()
	svc.registerUploadRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/stripe", s.HandleStripeWebhook)
}

func (s *Server) registerCronRoutes() {
	// Both verbs: hosted cron runners differ on which one they send.
	s.engine.GET("/api/cron", s.HandleCron)
	s.engine.POST("/api/cron", s.HandleCron)
}

func (s *Server) registerUploadRoutes() {
	s.engine.POST("/api/uploads/validate", s.HandleUploadValidate)
}
