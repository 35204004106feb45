package config

import (
	"log/slog"
	"time"
)

type contextKey string

const (
	LOG_LEVEL_PROD                         = slog.LevelInfo
	TRACE_ID_KEY                contextKey = "traceId"
	RATE_LIMIT_PER_SECOND                  = 2
	BURST_RATE_LIMIT_PER_SECOND            = 5

	//embeddings
	EmbeddingOutputDimensionality int32 = 1536
	EmbeddingBatchSize                  = 20
	EmbeddingRetryDelay                 = 5 * time.Second

	//chunking
	ChunkTargetSize        = 500
	ChunkOverlap           = 50
	ChunkBoundaryThreshold = 0.7

	//retrieval
	RetrievalTopK          = 5
	RetrievalMinSimilarity = 0.6

	//generation
	AnswerDefaultTone      = "professional"
	AnswerDefaultMaxLength = 500
	AnswerContextTokens    = 6000
	MetadataMaxInputChars  = 15000
	ModelTemperature       = 0.7
	MetadataTemperature    = 0.1

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//document workflow
	ProcessingRetryBudget = 2
	ProcessingRetryDelay  = 2 * time.Second
	ProcessingJobTimeout  = 5 * time.Minute
	PdfPageTimeout        = 10 * time.Second
	MaxUploadSize         = 32 << 20
	StuckDocumentAfter    = 15 * time.Minute
	MarkFailedTimeout     = 10 * time.Second

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 120 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantCollectionName    = "knowledge-base"

	//llm
	LLMConnectionTimeout = 60 * time.Second
	LLMMaxRetries        = 3
	LLMBaseBackoff       = 2 * time.Second
	LLMMaxBackoff        = 32 * time.Second

	OpenAIChatModel      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"
	GeminiModelName      = "gemini-2.5-flash"
	GoogleEmbeddingModel = "gemini-embedding-001"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	OutboundHTTPTimeout = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore  = 0
	RedisStepStore = 1

	//redis timeouts
	RedisJobStoreTTL  = 24 * time.Hour
	RedisStepStoreTTL = 24 * time.Hour

	//postgres
	PostgresPingTimeout = 5 * time.Second

	//notifier
	DeadlineReminderCron  = "0 9 * * *"
	WeeklyDigestCron      = "0 9 * * 1"
	GrantScrapeCron       = "0 0 * * *"
	DigestNewGrantsWindow = 7 * 24 * time.Hour
	DigestDeadlineHorizon = 14 * 24 * time.Hour

	//scraper
	ScraperRequestsPerSecond = 1
	ScraperMaxContentChars   = 50000
	ScraperMinContentChars   = 100
	ScraperURLCheckTimeout   = 10 * time.Second
)

// ReminderWindows are the day offsets at which watchers get a deadline reminder.
var ReminderWindows = []int{7, 1}
