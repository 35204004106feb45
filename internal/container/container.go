package container

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/customHttpClient"
	"github.com/akolanti/GrantAgent/internal/data/memory"
	"github.com/akolanti/GrantAgent/internal/data/objectStorage"
	"github.com/akolanti/GrantAgent/internal/data/postgres"
	"github.com/akolanti/GrantAgent/internal/data/redisStore"
	"github.com/akolanti/GrantAgent/internal/data/store"
	"github.com/akolanti/GrantAgent/internal/documents"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/email"
	"github.com/akolanti/GrantAgent/internal/handlers"
	"github.com/akolanti/GrantAgent/internal/job"
	"github.com/akolanti/GrantAgent/internal/notifier"
	"github.com/akolanti/GrantAgent/internal/rag"
	"github.com/akolanti/GrantAgent/internal/rag/embedding"
	"github.com/akolanti/GrantAgent/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/GrantAgent/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/GrantAgent/internal/rag/generator"
	"github.com/akolanti/GrantAgent/internal/rag/ingest"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/akolanti/GrantAgent/internal/rag/llm/gemini"
	"github.com/akolanti/GrantAgent/internal/rag/llm/openaiLLM"
	"github.com/akolanti/GrantAgent/internal/rag/metadata"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB/pgvectorDB"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/GrantAgent/internal/scraper"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/jackc/pgx/v5/pgxpool"
)

var logger = logger_i.NewLogger("Container")

type Repositories struct {
	Documents     commonModels.DocumentRepository
	Chunks        vectorDB.ChunkRepository
	Startups      grantModel.StartupRepository
	Grants        grantModel.GrantRepository
	Applications  grantModel.ApplicationRepository
	Watchlist     grantModel.WatchlistRepository
	Notifications grantModel.NotificationRepository
	JobStore      jobModel.JobStore
	StepStore     jobModel.StepStore
}

// Container holds every long-lived component of the process.
type Container struct {
	Settings     *config.Settings
	Repositories Repositories
	Storage      objectStorage.Storage
	LLM          llm.Provider
	Embedder     *embedding.Manager
	Rag          rag.Service
	JobService   *job.Service
	Dispatcher   job.ProcessingDispatcher
	Documents    *documents.Service
	Notifier     *notifier.Notifier
	Scraper      *scraper.Scraper

	closers []func()
}

// Build connects to every configured backend. Postgres and Redis are optional:
// without DATABASE_URL the repositories live in memory, and an unreachable Redis
// falls back to in-memory job and step stores.
func Build(ctx context.Context, s *config.Settings) (*Container, error) {
	c := &Container{Settings: s}

	repos, err := c.buildRepositories(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Repositories = repos

	if c.Storage, err = buildStorage(s); err != nil {
		c.Close()
		return nil, err
	}
	if c.LLM, err = buildLLM(ctx, s); err != nil {
		c.Close()
		return nil, err
	}
	provider, err := buildEmbedder(ctx, s)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Embedder = embedding.NewManager(provider, s.EmbeddingDimension)

	workflow := ingest.NewWorkflow(repos.Documents, c.Storage, metadata.NewExtractor(c.LLM), c.Embedder, repos.Chunks, repos.StepStore)
	c.Rag = rag.NewService(rag.Dependencies{
		Workflow:     workflow,
		Embedder:     c.Embedder,
		Chunks:       repos.Chunks,
		Generator:    generator.NewGenerator(c.LLM),
		Startups:     repos.Startups,
		Grants:       repos.Grants,
		Applications: repos.Applications,
	})

	c.JobService = job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          repos.JobStore,
	})
	c.Dispatcher = job.NewDispatcher(s.ProcessingMode, c.JobService, c.Rag)
	c.Documents = documents.NewService(repos.Documents, repos.Chunks, c.Storage, c.Dispatcher)

	c.Notifier = notifier.New(notifier.Dependencies{
		Startups:      repos.Startups,
		Grants:        repos.Grants,
		Watchlist:     repos.Watchlist,
		Notifications: repos.Notifications,
		Sender:        buildSender(s),
		AppURL:        s.AppURL,
	})

	sources, err := config.LoadGrantSources(s.GrantSourcesFile)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Scraper = scraper.New(sources, c.LLM, repos.Grants, customHttpClient.NewPooledClient(config.ScraperURLCheckTimeout*3))

	logger.Info("Components ready", "llm", s.LLMProvider, "embedding", s.EmbeddingProvider,
		"vectorBackend", s.VectorBackend, "storage", s.StorageBackend, "processingMode", s.ProcessingMode)
	return c, nil
}

func (c *Container) buildRepositories(ctx context.Context) (Repositories, error) {
	s := c.Settings
	var repos Repositories
	var pool *pgxpool.Pool

	if s.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		grants := memory.NewGrantStore()
		repos.Documents = memory.NewDocumentStore()
		repos.Chunks = memory.NewChunkStore()
		repos.Startups = memory.Startups{GrantStore: grants}
		repos.Grants = memory.Grants{GrantStore: grants}
		repos.Applications = memory.Applications{GrantStore: grants}
		repos.Watchlist = memory.Watchlist{GrantStore: grants}
		repos.Notifications = memory.Notifications{GrantStore: grants}
	} else {
		var err error
		pool, err = postgres.Connect(ctx, s.DatabaseURL)
		if err != nil {
			return repos, err
		}
		c.closers = append(c.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool, s.EmbeddingDimension); err != nil {
			return repos, err
		}
		repos.Documents = postgres.NewDocumentRepository(pool)
		repos.Chunks = pgvectorDB.NewChunkStore(pool)
		repos.Startups = postgres.NewStartupRepository(pool)
		repos.Grants = postgres.NewGrantRepository(pool)
		repos.Applications = postgres.NewApplicationRepository(pool)
		repos.Watchlist = postgres.NewWatchlistRepository(pool)
		repos.Notifications = postgres.NewNotificationRepository(pool)
	}

	if s.VectorBackend == "qdrant" {
		holder, err := qdrantDB.NewQdrantStore(ctx, qdrantDB.Options{
			Host:       s.QdrantHost,
			Port:       s.QdrantPort,
			APIKey:     s.QdrantAPIKey,
			Collection: s.QdrantCollection,
			Dimension:  s.EmbeddingDimension,
		})
		if err != nil {
			return repos, err
		}
		c.closers = append(c.closers, func() { _ = holder.Close() })
		repos.Chunks = holder
	}

	redisOpts := redisStore.ConnectionOptions{Addr: s.RedisAddr, Password: s.RedisPassword}
	if jobDB, err := redisStore.Connect(ctx, redisOpts, config.RedisJobStore); err == nil {
		c.closers = append(c.closers, jobDB.Close)
		repos.JobStore = store.NewRedisJobStore(jobDB)
	} else {
		logger.Error("Redis job store is offline, using memory", "error", err)
		repos.JobStore = store.InitInMemoryJobStore()
	}
	if stepDB, err := redisStore.Connect(ctx, redisOpts, config.RedisStepStore); err == nil {
		c.closers = append(c.closers, stepDB.Close)
		repos.StepStore = store.NewRedisStepStore(stepDB)
	} else {
		logger.Error("Redis step store is offline, using memory", "error", err)
		repos.StepStore = store.InitInMemoryStepStore()
	}
	return repos, nil
}

func buildStorage(s *config.Settings) (objectStorage.Storage, error) {
	if s.StorageBackend == "supabase" {
		return objectStorage.NewSupabaseStorage(s.SupabaseURL, s.SupabaseServiceKey, s.StorageBucket, customHttpClient.NewPooledClient(0))
	}
	return objectStorage.NewLocalStorage(s.LocalStorageDir)
}

func buildLLM(ctx context.Context, s *config.Settings) (llm.Provider, error) {
	switch s.LLMProvider {
	case "gemini":
		return gemini.NewGeminiClient(ctx, s.GeminiModel, s.GoogleAPIKey)
	case "openai":
		return openaiLLM.NewOpenAIClient(s.OpenAIAPIKey, s.OpenAIBaseURL, s.OpenAIChatModel, customHttpClient.NewPooledClient(config.LLMConnectionTimeout))
	}
	return nil, fmt.Errorf("unknown LLM provider %q", s.LLMProvider)
}

func buildEmbedder(ctx context.Context, s *config.Settings) (embedding.Embedder, error) {
	switch s.EmbeddingProvider {
	case "gemini":
		return googleEmbedding.NewGoogleEmbedder(ctx, s.GoogleEmbeddingModel, s.GoogleAPIKey, s.EmbeddingDimension)
	case "openai":
		return openaiEmbedding.NewOpenAIEmbedder(s.OpenAIAPIKey, s.OpenAIBaseURL, s.OpenAIEmbeddingModel, s.EmbeddingDimension,
			customHttpClient.NewPooledClient(config.LLMConnectionTimeout))
	}
	return nil, fmt.Errorf("unknown embedding provider %q", s.EmbeddingProvider)
}

func buildSender(s *config.Settings) email.Sender {
	if s.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, emails will only be logged")
		return email.LogSender{}
	}
	return email.NewResendSender(s.ResendAPIKey, s.EmailFrom, customHttpClient.NewPooledClient(0))
}

// AdminJobs are the scheduled jobs an operator can run on demand.
func (c *Container) AdminJobs() map[string]handlers.AdminJob {
	return map[string]handlers.AdminJob{
		"reminders": func(ctx context.Context) (any, error) { return c.Notifier.DeadlineReminders(ctx, time.Now()) },
		"digest":    func(ctx context.Context) (any, error) { return c.Notifier.WeeklyDigest(ctx, time.Now()) },
		"scrape":    func(ctx context.Context) (any, error) { return c.Scraper.Run(ctx) },
	}
}

// NewScheduler registers the reminder, digest and scrape jobs.
func (c *Container) NewScheduler() (*notifier.Scheduler, error) {
	sched := notifier.NewScheduler()
	if err := sched.RegisterNotifier(c.Notifier); err != nil {
		return nil, err
	}
	err := sched.Add("grant_scrape", config.GrantScrapeCron, func(ctx context.Context) error {
		_, err := c.Scraper.Run(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// Close releases backends in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
