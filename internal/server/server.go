package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/credicheck/internal/config"
	"github.com/smallbiznis/credicheck/internal/identity"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"github.com/smallbiznis/credicheck/internal/ledger"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	"github.com/smallbiznis/credicheck/internal/observability"
	obsmiddleware "github.com/smallbiznis/credicheck/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/credicheck/internal/observability/metrics"
	obstracing "github.com/smallbiznis/credicheck/internal/observability/tracing"
	"github.com/smallbiznis/credicheck/internal/pricing"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	"github.com/smallbiznis/credicheck/internal/ratelimit"
	"github.com/smallbiznis/credicheck/internal/report"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	"github.com/smallbiznis/credicheck/internal/stats"
	statsdomain "github.com/smallbiznis/credicheck/internal/stats/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	identity.Module,
	ledger.Module,
	pricing.Module,
	report.Module,
	stats.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
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
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	identitySvc   identitydomain.Service
	ledgerSvc     ledgerdomain.Service
	pricingSvc    pricingdomain.Service
	reportSvc     reportdomain.Service
	statsSvc      statsdomain.Service
	reportLimiter *ratelimit.ReportLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	IdentitySvc   identitydomain.Service
	LedgerSvc     ledgerdomain.Service
	PricingSvc    pricingdomain.Service
	ReportSvc     reportdomain.Service
	StatsSvc      statsdomain.Service
	ReportLimiter *ratelimit.ReportLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		identitySvc:   p.IdentitySvc,
		ledgerSvc:     p.LedgerSvc,
		pricingSvc:    p.PricingSvc,
		reportSvc:     p.ReportSvc,
		statsSvc:      p.StatsSvc,
		reportLimiter: p.ReportLimiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

// Engine exposes the underlying router for in-process test servers.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	users := v1.Group("/users")
	{
		users.POST("", s.RegisterUser)
		users.GET("", s.ListUsers)
		users.GET("/:id", s.GetUser)
		users.PATCH("/:id", s.UpdateUser)
		users.DELETE("/:id", s.DeleteUser)
		users.POST("/:id/role", s.UpdateUserRole)
		users.GET("/:id/transactions", s.ListUserTransactions)
	}

	partners := v1.Group("/partners")
	{
		partners.POST("", s.CreatePartner)
		partners.GET("/:id/stats", s.GetPartnerStats)
		partners.GET("/:id/wallet", s.GetWallet)
		partners.POST("/:id/wallet/topup", s.TopupWallet)
		partners.POST("/:id/wallet/adjust", s.AdjustWallet)
		partners.GET("/:id/reports", s.ListPartnerReports)
	}

	pricingGroup := v1.Group("/pricing")
	{
		pricingGroup.GET("", s.GetPricing)
		pricingGroup.PUT("", s.ReplacePricing)
		pricingGroup.POST("/quote", s.QuotePricing)
	}

	reports := v1.Group("/reports")
	{
		reports.POST("", s.GenerateReports)
		reports.GET("", s.ListReports)
		reports.GET("/:id", s.GetReport)
	}

	v1.GET("/consumers/:id/reports", s.ListConsumerReports)
	v1.GET("/transactions", s.ListTransactions)
	v1.GET("/stats/admin", s.GetAdminStats)
}
