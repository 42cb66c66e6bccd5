package serverhttp

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"recommend-service/internal/config"
	"recommend-service/internal/metrics"
	"recommend-service/internal/middleware"
	recHnd "recommend-service/internal/recommend/handler"
	"recommend-service/internal/session"
)

// Services are the long-lived collaborators built in main.
type Services struct {
	Dir      recHnd.Directory
	Verifier *session.Verifier // nil: every request is anonymous
	Resolver *session.Resolver
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

func NewRouter(cfg config.Config, logger zerolog.Logger, svc Services) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> metrics -> cors -> limit -> session
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(svc.Metrics))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))
	r.Use(session.Middleware(svc.Verifier, svc.Resolver, logger))

	r.Get("/health", Health)
	if svc.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{}))
	}
	if cfg.LogLevel == "debug" {
		r.Mount("/debug", chimw.Profiler())
	}

	d := recHnd.Deps{
		Dir:          svc.Dir,
		Metrics:      svc.Metrics,
		Logger:       logger,
		TopN:         cfg.TopN,
		MaxUpload:    cfg.MaxUploadBytes(),
		AllowOrigins: cfg.AllowOrigins,
	}

	// ранжирование присланного списка
	r.Post("/recommend", recHnd.Recommend(d))
	r.Post("/recommend/upload", recHnd.Upload(d))

	// ранжирование по справочнику поставщиков
	r.Get("/recommendations", recHnd.Recommendations(d))
	r.Get("/recommendations/ws", recHnd.Stream(d))
	r.Get("/commodities", recHnd.Commodities(d))

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", recHnd.ListSuppliers(d))
		r.Put("/", recHnd.PutSuppliers(d))
		r.Post("/import", recHnd.ImportSuppliers(d))
		r.Get("/{id}", recHnd.GetSupplier(d))
		r.Delete("/{id}", recHnd.DeleteSupplier(d))
		r.Get("/{id}/reviews", recHnd.SupplierReviews(d))
		r.Post("/{id}/reviews", recHnd.CreateReview(d))
	})
	r.Get("/orders/{id}/review", recHnd.OrderReview(d))

	r.Get("/session", recHnd.Session)
	r.Put("/profile", recHnd.PutProfile(d))
	r.Post("/insights", recHnd.Insights(d))

	return r
}
