package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	"github.com/smallbiznis/voltbill/internal/config"
	consumptiondomain "github.com/smallbiznis/voltbill/internal/consumption/domain"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
	ingestdomain "github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/smallbiznis/voltbill/internal/observability"
	obsmiddleware "github.com/smallbiznis/voltbill/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/voltbill/internal/observability/metrics"
	obstracing "github.com/smallbiznis/voltbill/internal/observability/tracing"
	"github.com/smallbiznis/voltbill/internal/ratelimit"
	reportdomain "github.com/smallbiznis/voltbill/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	registerValidatorTagNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
		QuietRoutes:     []string{"/health", "/metrics"},
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			timeout := cfg.ShutdownTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	customerSvc    customerdomain.Service
	consumptionSvc consumptiondomain.Service
	billSvc        billdomain.Service
	ingestSvc      ingestdomain.Service
	reportSvc      reportdomain.Service
	limiter        *ratelimit.UploadLimiter
	log            *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	CustomerSvc    customerdomain.Service
	ConsumptionSvc consumptiondomain.Service
	BillSvc        billdomain.Service
	IngestSvc      ingestdomain.Service
	ReportSvc      reportdomain.Service
	Limiter        *ratelimit.UploadLimiter `optional:"true"`
	Log            *zap.Logger              `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		customerSvc:    p.CustomerSvc,
		consumptionSvc: p.ConsumptionSvc,
		billSvc:        p.BillSvc,
		ingestSvc:      p.IngestSvc,
		reportSvc:      p.ReportSvc,
		limiter:        p.Limiter,
		log:            p.Log,
	}
	if svc.log == nil {
		svc.log = zap.NewNop()
	}
	svc.log = svc.log.Named("http.server")

	svc.registerUIRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerUIRoutes() {
	s.engine.GET("/", s.Index)
	s.engine.POST("/upload-csv", s.UploadRateLimit(), s.UploadCSV)
	s.engine.POST("/customer-information", s.CreateCustomerInformation)
	s.engine.POST("/render-file", s.RenderFile)
}

func (s *Server) registerAPIRoutes() {
	s.engine.GET("/get-customers", s.ListCustomers)
	s.engine.GET("/customers/:id", s.GetCustomerByID)

	s.engine.GET("/get-bills", s.ListBills)
	s.engine.GET("/bills/:id/pdf", s.DownloadBillPDF)
	s.engine.GET("/bills/:id/preview", s.PreviewBill)

	s.engine.POST("/consumptions", s.CreateConsumption)
	s.engine.GET("/consumptions", s.ListConsumptions)

	s.engine.GET("/uploads", s.ListUploads)
}
