package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	IsProd     bool
	ListenAddr string
	AuthToken  string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	LLMProvider          string // openai | gemini
	EmbeddingProvider    string // openai | gemini
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIChatModel      string
	OpenAIEmbeddingModel string
	GoogleAPIKey         string
	GeminiModel          string
	GoogleEmbeddingModel string
	EmbeddingDimension   int

	VectorBackend    string // pgvector | qdrant
	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantCollection string

	ProcessingMode string // async | inline

	StorageBackend     string // supabase | local
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string
	LocalStorageDir    string

	ResendAPIKey string
	EmailFrom    string
	AppURL       string

	EnableScheduler  bool
	GrantSourcesFile string
}

// Load reads an optional .env file and then the process environment.
func Load(envFilePath string) (*Settings, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	s := &Settings{
		IsProd:     getEnvAsBool("APP_PROD", false),
		ListenAddr: getEnv("LISTEN_ADDR", ServerListenAddr),
		AuthToken:  getEnv("API_AUTH_TOKEN", ""),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", RedisAddr),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LLMProvider:          strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		EmbeddingProvider:    strings.ToLower(getEnv("EMBEDDING_PROVIDER", "openai")),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		OpenAIChatModel:      getEnv("OPENAI_CHAT_MODEL", OpenAIChatModel),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", OpenAIEmbeddingModel),
		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", GeminiModelName),
		GoogleEmbeddingModel: getEnv("GOOGLE_EMBEDDING_MODEL", GoogleEmbeddingModel),
		EmbeddingDimension:   getEnvAsInt("EMBEDDING_DIMENSION", int(EmbeddingOutputDimensionality)),

		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", "pgvector")),
		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvAsInt("QDRANT_PORT", QdrantGrpcPort),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", QdrantCollectionName),

		ProcessingMode: strings.ToLower(getEnv("PROCESSING_MODE", "async")),

		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		SupabaseURL:        strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "documents"),
		LocalStorageDir:    getEnv("LOCAL_STORAGE_DIR", "temporary_data"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "Grant Agent <notifications@grantagent.app>"),
		AppURL:       strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),

		EnableScheduler:  getEnvAsBool("ENABLE_SCHEDULER", true),
		GrantSourcesFile: getEnv("GRANT_SOURCES_FILE", ""),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects option values that no component understands.
func (s *Settings) Validate() error {
	if !oneOf(s.LLMProvider, "openai", "gemini") {
		return fmt.Errorf("unknown LLM_PROVIDER %q", s.LLMProvider)
	}
	if !oneOf(s.EmbeddingProvider, "openai", "gemini") {
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", s.EmbeddingProvider)
	}
	if !oneOf(s.VectorBackend, "pgvector", "qdrant") {
		return fmt.Errorf("unknown VECTOR_BACKEND %q", s.VectorBackend)
	}
	if !oneOf(s.ProcessingMode, "async", "inline") {
		return fmt.Errorf("unknown PROCESSING_MODE %q", s.ProcessingMode)
	}
	if !oneOf(s.StorageBackend, "supabase", "local") {
		return fmt.Errorf("unknown STORAGE_BACKEND %q", s.StorageBackend)
	}
	if s.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", s.EmbeddingDimension)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
