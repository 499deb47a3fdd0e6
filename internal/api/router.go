package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/listing-studio/engine/internal/api/handlers"
	mw "github.com/listing-studio/engine/internal/api/middleware"
)

type Dependencies struct {
	AnalyzeHandler  *handlers.AnalyzeHandler
	LandingHandler  *handlers.LandingHandler
	OrdersHandler   *handlers.OrdersHandler
	ProjectsHandler *handlers.ProjectsHandler
	UsersHandler    *handlers.UsersHandler
	UploadHandler   *handlers.UploadHandler
	HealthHandler   *handlers.HealthHandler

	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.Metrics)
	r.Use(mw.CORS)
	r.Use(chimid.Compress(5, "application/json", "text/html"))

	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	rps, burst := dep.RateLimitRPS, dep.RateLimitBurst
	if rps <= 0 {
		rps, burst = 10, 20
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.RateLimit(rps, burst))

		api.Route("/analyze", func(ar chi.Router) {
			ar.Post("/", dep.AnalyzeHandler.Analyze)
			ar.Post("/generate-questions", dep.AnalyzeHandler.Questions)
			ar.Post("/generate-image-prompts", dep.AnalyzeHandler.ImagePrompts)
			ar.Post("/generate-product-image", dep.AnalyzeHandler.ProductImage)
			ar.Post("/generate-product-images", dep.AnalyzeHandler.ProductImages)
			ar.Post("/generate-landing-prompt", dep.AnalyzeHandler.LandingPrompt)

			ar.Post("/generate-landing", dep.LandingHandler.Generate)
			ar.Post("/generate-landing-stream", dep.LandingHandler.Stream)
			ar.Get("/landing-status/{id}", dep.LandingHandler.Status)
			ar.Patch("/landing-status/{id}/cancel", dep.LandingHandler.Cancel)

			ar.Post("/orders/{landingId}", dep.OrdersHandler.Submit)
		})

		api.Route("/projects", func(pr chi.Router) {
			pr.Get("/", dep.ProjectsHandler.List)
			pr.Post("/", dep.ProjectsHandler.Create)
			pr.Get("/{id}", dep.ProjectsHandler.Get)
			pr.Patch("/{id}", dep.ProjectsHandler.Rename)
			pr.Delete("/{id}", dep.ProjectsHandler.Delete)
			pr.Get("/{id}/landings/{landingId}/orders", dep.OrdersHandler.List)
		})

		api.Get("/users/{id}/balance", dep.UsersHandler.Balance)
		api.Post("/upload", dep.UploadHandler.Upload)
	})

	return r
}
