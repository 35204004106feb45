package utils

import (
	"net/http"

	_ "github.com/akolanti/GrantAgent/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

func GetNewUUID() string {
	return uuid.New().String()
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

// NewRouter returns a router with the swagger UI and the prometheus endpoint mounted.
func NewRouter() *chi.Mux {
	router := chi.NewRouter()
	InitSwagger(router)
	router.Handle("/metrics", promhttp.Handler())
	return router
}

func InitSwagger(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

// RoutePattern is the matched chi pattern, used to keep metric labels bounded.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
