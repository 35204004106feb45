package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/GrantAgent/internal/adapter/utils"
	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/handlers"
	"github.com/akolanti/GrantAgent/internal/middleware"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var _logger = logger_i.NewLogger("Server")

type ShutdownParams struct {
	Server           *http.Server
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	StopScheduler    func(ctx context.Context)
	CloseServices    context.CancelFunc
}

// Routes builds the HTTP surface. mcpHandler may be nil.
func Routes(h *handlers.Handlers, chain *middleware.Chain, mcpHandler http.Handler) http.Handler {
	r := utils.NewRouter()
	r.Get("/healthz", h.HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(chain.Handler)

		r.Get("/jobs/{id}", h.GetStatusHandler)

		r.Route("/startups/{startupId}", func(r chi.Router) {
			r.Post("/documents", h.UploadDocumentHandler)
			r.Get("/documents", h.ListDocumentsHandler)
			r.Get("/documents/{documentId}", h.GetDocumentHandler)
			r.Delete("/documents/{documentId}", h.DeleteDocumentHandler)
			r.Post("/documents/{documentId}/retry", h.RetryDocumentHandler)

			r.Post("/answers", h.AnswerHandler)
			r.Post("/follow-up-email", h.FollowUpEmailHandler)
			r.Get("/recommendations", h.RecommendationsHandler)
			r.Get("/grants/{grantId}/match", h.MatchHandler)
			r.Post("/grants/{grantId}/application", h.GenerateApplicationHandler)
			r.Put("/grants/{grantId}/application/answers/{questionId}", h.EditAnswerHandler)
		})

		r.Post("/admin/jobs/{name}", h.RunAdminJobHandler)

		if mcpHandler != nil {
			r.Handle("/mcp", mcpHandler)
		}
	})
	return r
}

func NewServer(listenAddr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
}

func CreateServer(server *http.Server) {
	_logger.Info("Server is listening at", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", server.Addr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server := shutdownParams.Server
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}
		if shutdownParams.StopScheduler != nil {
			shutdownParams.StopScheduler(ctx)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
