package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/generator"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

// Service is what the workers, handlers and tools call. It hides which
// embedder, index and model sit behind it.
type Service interface {
	ProcessDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	// Retrieve uses the configured defaults for topK <= 0 and minSimilarity < 0.
	Retrieve(ctx context.Context, startupId string, question string, topK int, minSimilarity float64) ([]commonModels.RetrievedChunk, error)
	Answer(ctx context.Context, query AnswerQuery) (AnswerResult, error)
	GenerateApplication(ctx context.Context, startupId string, grantId string) (ApplicationResult, error)
	EditAnswer(ctx context.Context, startupId string, grantId string, questionId string, text string) (grantModel.ApplicationAnswer, error)
	FollowUpEmail(ctx context.Context, req generator.FollowUpRequest) (generator.FollowUpEmail, error)
}

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, req generator.AnswerRequest) (string, error)
	GenerateFollowUpEmail(ctx context.Context, req generator.FollowUpRequest) (generator.FollowUpEmail, error)
}

type DocumentProcessor interface {
	Run(ctx context.Context, job jobModel.Job) (jobModel.Job, error)
}

type AnswerQuery struct {
	StartupId string
	Question  string
	GrantName string
	Tone      string
	MaxLength int
}

type AnswerResult struct {
	Answer  string                        `json:"answer"`
	Sources []commonModels.RetrievedChunk `json:"sources"`
}

type QuestionFailure struct {
	QuestionId string `json:"question_id"`
	Reason     string `json:"reason"`
}

type ApplicationResult struct {
	Application grantModel.Application         `json:"application"`
	Answers     []grantModel.ApplicationAnswer `json:"answers"`
	Failed      []QuestionFailure              `json:"failed,omitempty"`
}

type Dependencies struct {
	Workflow     DocumentProcessor
	Embedder     QueryEmbedder
	Chunks       vectorDB.ChunkRepository
	Generator    AnswerGenerator
	Startups     grantModel.StartupRepository
	Grants       grantModel.GrantRepository
	Applications grantModel.ApplicationRepository
}

type service struct {
	workflow     DocumentProcessor
	embedder     QueryEmbedder
	chunks       vectorDB.ChunkRepository
	generator    AnswerGenerator
	startups     grantModel.StartupRepository
	grants       grantModel.GrantRepository
	applications grantModel.ApplicationRepository
	logger       *logger_i.Logger
}

func NewService(deps Dependencies) Service {
	return &service{
		workflow:     deps.Workflow,
		embedder:     deps.Embedder,
		chunks:       deps.Chunks,
		generator:    deps.Generator,
		startups:     deps.Startups,
		grants:       deps.Grants,
		applications: deps.Applications,
		logger:       logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_processing", time.Since(start)) }()

	processContext, cancel := context.WithTimeout(ctx, config.ProcessingJobTimeout)
	defer cancel()

	out, err := s.workflow.Run(processContext, job)
	if err != nil {
		canRetry := commonModels.IsRetryable(err) && !out.IsLastAttempt()
		return s.jobError(ctx, out, err, "DOCUMENT_PROCESSING_FAILURE", canRetry)
	}
	out.Status = jobModel.JobStatusComplete
	out.Error = jobModel.JobError{}
	return out
}

func (s *service) Retrieve(ctx context.Context, startupId string, question string, topK int, minSimilarity float64) ([]commonModels.RetrievedChunk, error) {
	if topK <= 0 {
		topK = config.RetrievalTopK
	}
	if minSimilarity < 0 {
		minSimilarity = config.RetrievalMinSimilarity
	}
	log := s.logger.FromContext(ctx).With("startupId", startupId)

	vector, err := s.executeEmbeddingStep(ctx, question)
	if err != nil {
		log.Error("Query embedding failed", "error", err)
		return nil, err
	}
	hits, err := s.executeVectorSearchStep(ctx, startupId, vector, minSimilarity, topK)
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return nil, err
	}
	log.Debug("Retrieved context", "hits", len(hits))
	return vectorDB.FilterRanked(hits, minSimilarity, topK), nil
}

func (s *service) Answer(ctx context.Context, query AnswerQuery) (AnswerResult, error) {
	if strings.TrimSpace(query.Question) == "" {
		return AnswerResult{}, errors.New("question is required")
	}
	startupName, err := s.startupName(ctx, query.StartupId)
	if err != nil {
		return AnswerResult{}, err
	}

	hits, err := s.Retrieve(ctx, query.StartupId, query.Question, config.RetrievalTopK, config.RetrievalMinSimilarity)
	if err != nil {
		return AnswerResult{}, err
	}

	answer, err := s.executeGenerationStep(ctx, generator.AnswerRequest{
		Question:    query.Question,
		Context:     hits,
		StartupName: startupName,
		GrantName:   query.GrantName,
		Tone:        query.Tone,
		MaxLength:   query.MaxLength,
	})
	if err != nil {
		return AnswerResult{}, err
	}
	if hits == nil {
		hits = []commonModels.RetrievedChunk{}
	}
	return AnswerResult{Answer: answer, Sources: hits}, nil
}

// GenerateApplication drafts an answer for every question of the grant and stores
// them on the startup's application. Answers the founder already edited are kept.
func (s *service) GenerateApplication(ctx context.Context, startupId string, grantId string) (ApplicationResult, error) {
	log := s.logger.FromContext(ctx).With("startupId", startupId, "grantId", grantId)

	startup, err := s.startups.Get(ctx, startupId)
	if err != nil {
		return ApplicationResult{}, err
	}
	grant, err := s.grants.Get(ctx, grantId)
	if err != nil {
		return ApplicationResult{}, err
	}
	app, err := s.applications.GetOrCreate(ctx, startupId, grantId)
	if err != nil {
		return ApplicationResult{}, err
	}
	existing, err := s.applications.GetAnswers(ctx, app.Id)
	if err != nil {
		return ApplicationResult{}, err
	}
	edited := make(map[string]grantModel.ApplicationAnswer)
	for _, a := range existing {
		if a.IsEdited {
			edited[a.QuestionId] = a
		}
	}

	result := ApplicationResult{Application: app, Answers: []grantModel.ApplicationAnswer{}}
	var generated []grantModel.ApplicationAnswer
	for _, q := range grant.Questions {
		if a, ok := edited[q.Id]; ok {
			result.Answers = append(result.Answers, a)
			continue
		}
		answer, err := s.answerQuestion(ctx, startup, grant.Name, q)
		if err != nil {
			log.Warn("Question generation failed", "questionId", q.Id, "error", err)
			result.Failed = append(result.Failed, QuestionFailure{QuestionId: q.Id, Reason: err.Error()})
			continue
		}
		generated = append(generated, answer)
	}

	if len(generated) > 0 {
		if err := s.applications.SaveAnswers(ctx, app.Id, generated); err != nil {
			return ApplicationResult{}, err
		}
	}
	result.Answers = append(result.Answers, generated...)
	log.Info("Application generated", "answers", len(generated), "failed", len(result.Failed))
	return result, nil
}

func (s *service) answerQuestion(ctx context.Context, startup grantModel.StartupProfile, grantName string, q grantModel.GrantQuestion) (grantModel.ApplicationAnswer, error) {
	hits, err := s.Retrieve(ctx, startup.Id, q.Prompt, config.RetrievalTopK, config.RetrievalMinSimilarity)
	if err != nil {
		return grantModel.ApplicationAnswer{}, err
	}
	maxLength := config.AnswerDefaultMaxLength
	if q.MaxLength != nil && *q.MaxLength > 0 {
		maxLength = *q.MaxLength
	}
	text, err := s.executeGenerationStep(ctx, generator.AnswerRequest{
		Question:    q.Prompt,
		Context:     hits,
		StartupName: startup.Name,
		GrantName:   grantName,
		MaxLength:   maxLength,
	})
	if err != nil {
		return grantModel.ApplicationAnswer{}, err
	}
	return grantModel.ApplicationAnswer{
		QuestionId:      q.Id,
		GeneratedAnswer: text,
		Sources:         sourceNames(hits),
	}, nil
}

// EditAnswer stores the founder's own text for a question. Later generations keep it.
func (s *service) EditAnswer(ctx context.Context, startupId string, grantId string, questionId string, text string) (grantModel.ApplicationAnswer, error) {
	grant, err := s.grants.Get(ctx, grantId)
	if err != nil {
		return grantModel.ApplicationAnswer{}, err
	}
	known := false
	for _, q := range grant.Questions {
		known = known || q.Id == questionId
	}
	if !known {
		return grantModel.ApplicationAnswer{}, fmt.Errorf("question %s: %w", questionId, commonModels.ErrNotFound)
	}

	app, err := s.applications.GetOrCreate(ctx, startupId, grantId)
	if err != nil {
		return grantModel.ApplicationAnswer{}, err
	}
	existing, err := s.applications.GetAnswers(ctx, app.Id)
	if err != nil {
		return grantModel.ApplicationAnswer{}, err
	}

	answer := grantModel.ApplicationAnswer{QuestionId: questionId, Sources: []string{}}
	for _, a := range existing {
		if a.QuestionId == questionId {
			answer = a
		}
	}
	answer.EditedAnswer = &text
	answer.IsEdited = true
	if err := s.applications.SaveAnswers(ctx, app.Id, []grantModel.ApplicationAnswer{answer}); err != nil {
		return grantModel.ApplicationAnswer{}, err
	}
	return answer, nil
}

func (s *service) FollowUpEmail(ctx context.Context, req generator.FollowUpRequest) (generator.FollowUpEmail, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("follow_up_email", time.Since(start)) }()
	return s.generator.GenerateFollowUpEmail(ctx, req)
}

func (s *service) startupName(ctx context.Context, startupId string) (string, error) {
	profile, err := s.startups.Get(ctx, startupId)
	if errors.Is(err, commonModels.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.Name, nil
}
