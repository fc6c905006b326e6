package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/core"
	"github.com/agenthands/steward/internal/core/review"
	"github.com/agenthands/steward/internal/logger"
)

type Server struct {
	Steward  *core.Steward
	Registry *review.Registry
	Status   *StatusMonitor

	cfg     config.ServerConfig
	steward string
	pages   *template.Template
	log     *logger.Logger
}

func NewServer(st *core.Steward, cfg *config.Config, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		Steward:  st,
		Registry: review.NewRegistry(st, cfg.Server.SessionTTL.Duration),
		Status:   NewStatusMonitor(st.Gateway, cfg.Server.PollInterval.Duration, log),
		cfg:      cfg.Server,
		steward:  cfg.Review.Steward,
		pages:    pages,
		log:      log.With("component", "server"),
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.log), Metrics(), CORS(s.cfg.AllowOrigins))
	r.SetHTMLTemplate(s.pages)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ui := r.Group("/", Session(s.cfg.SessionTTL.Duration))
	{
		ui.GET("/", s.DashboardPage)
		ui.GET("/match-review", s.ReviewPage)
		ui.GET("/golden-records", s.GoldenPage)
		ui.GET("/golden-records/:id", s.GoldenDetailPage)
		ui.GET("/hierarchy", s.HierarchyPage)
		ui.GET("/audit", s.AuditPage)
		ui.GET("/data-quality", s.QualityPage)
	}

	api := r.Group("/api", Session(s.cfg.SessionTTL.Duration))
	{
		api.GET("/status", s.GetStatus)
		api.GET("/dashboard", s.GetDashboard)
		api.POST("/transform/run", s.RunTransform)

		api.GET("/golden", s.ListGolden)
		api.GET("/golden/:id", s.GetGolden)
		api.GET("/golden/:id/summary", s.SummarizeGolden)

		api.GET("/hierarchy", s.GetHierarchy)
		api.POST("/hierarchy", s.AddRelationship)
		api.GET("/hierarchy/suggestions", s.SuggestRelationships)
		api.POST("/hierarchy/sync", s.SyncHierarchy)

		api.GET("/audit", s.GetAudit)
		api.GET("/quality", s.GetQuality)

		api.GET("/review", s.GetReview)
		api.POST("/review/load", s.LoadReview)
		api.POST("/review/decide", s.DecideReview)
		api.POST("/review/skip", s.SkipReview)
		api.POST("/review/key", s.ReviewKey)
		api.GET("/review/candidates/:id/assessment", s.AssessCandidate)
	}

	return r
}

// stewardName identifies who acts: the reverse proxy's user header when
// present, otherwise the configured steward.
func (s *Server) stewardName(c *gin.Context) string {
	if v := c.GetHeader(stewardHeader); v != "" {
		return v
	}
	return s.steward
}

func (s *Server) session(c *gin.Context) *review.Session {
	return s.Registry.Get(reviewKey(c), s.stewardName(c))
}

// Run serves until ctx is done, then shuts down gracefully. The status
// monitor and the session sweeper run alongside.
func (s *Server) Run(ctx context.Context) error {
	go s.Status.Run(ctx)
	go s.Registry.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
