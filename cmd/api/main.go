// @title           Grant Agent API
// @version         1.0
// @description     Document ingestion, grant matching and application drafting for startups
// @termsOfService  http://swagger.io/terms/

// @contact.name    Grant Agent
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/container"
	"github.com/akolanti/GrantAgent/internal/handlers"
	"github.com/akolanti/GrantAgent/internal/mcpserver"
	"github.com/akolanti/GrantAgent/internal/middleware"
	"github.com/akolanti/GrantAgent/internal/server"
	"github.com/akolanti/GrantAgent/internal/worker"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

var (
	envFile           string
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&envFile, "env", ".env", "path to an optional .env file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	settings, err := config.Load(envFile)
	if err != nil {
		logger_i.Init(false)
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}

	logger_i.Init(settings.IsProd)
	var logger = logger_i.NewLogger("main")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	c, err := container.Build(serviceContext, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return
	}
	defer c.Close()

	//init worker pool
	stopWorkerChannel = make(chan bool, 1)
	if settings.ProcessingMode == "async" {
		worker.NewPool(c.JobService, c.Rag, stopWorkerChannel, &workerWaitGroup).Start()
	}

	h := handlers.New(handlers.Dependencies{
		Documents: c.Documents,
		Rag:       c.Rag,
		Jobs:      c.Repositories.JobStore,
		Startups:  c.Repositories.Startups,
		Grants:    c.Repositories.Grants,
		AdminJobs: c.AdminJobs(),
	})
	mcpHandler := mcpserver.NewServer(c.Rag, c.Repositories.Startups, c.Repositories.Grants).Handler()
	httpServer := server.NewServer(settings.ListenAddr, server.Routes(h, middleware.NewChain(settings.AuthToken), mcpHandler))

	var stopScheduler func(ctx context.Context)
	if settings.EnableScheduler {
		sched, err := c.NewScheduler()
		if err != nil {
			logger.Error("Could not register scheduled jobs", "error", err)
			return
		}
		sched.Start()
		stopScheduler = sched.Stop
		logger.Info("Scheduler started", "entries", sched.Entries())
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		Server:           httpServer,
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		StopScheduler:    stopScheduler,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(httpServer)

	<-stopExecution
	logger.Info("Server stopped")
}
