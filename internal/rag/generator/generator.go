package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

const answerSystemPrompt = `You write answers to grant application questions on behalf of a startup founder.
Output only the answer text, written in the first person plural as the startup.
Never add meta-commentary: no preamble such as "Here is your answer", no closing remarks,
no mention of word counts, formatting or the sources you were given.`

const emailSystemPrompt = `You write concise, polite follow-up emails from startup founders to grant program officers.
Reply with a JSON object with exactly two string keys: "subject" and "body".`

var logger = logger_i.NewLogger("Generator")

type AnswerRequest struct {
	Question    string
	Context     []commonModels.RetrievedChunk
	StartupName string
	GrantName   string
	Tone        string
	// MaxLength is a word limit.
	MaxLength int
}

type FollowUpRequest struct {
	GrantName      string
	StartupName    string
	Description    string
	Achievements   []string
	SenderName     string
	RecipientTitle string
}

type FollowUpEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Generator struct {
	provider      llm.Provider
	contextTokens int
}

func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider, contextTokens: config.AnswerContextTokens}
}

// GenerateAnswer writes a grounded answer. With no context it falls back to
// what can plausibly be said about the named startup.
func (g *Generator) GenerateAnswer(ctx context.Context, req AnswerRequest) (string, error) {
	if req.Tone == "" {
		req.Tone = config.AnswerDefaultTone
	}
	if req.MaxLength <= 0 {
		req.MaxLength = config.AnswerDefaultMaxLength
	}

	start := time.Now()
	answer, err := g.provider.Generate(ctx, llm.Request{
		System:      answerSystemPrompt,
		User:        g.buildAnswerPrompt(req),
		MaxTokens:   req.MaxLength * 2,
		Temperature: config.ModelTemperature,
	})
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		logger.FromContext(ctx).Error("Answer generation failed", "error", err)
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", commonModels.ErrGenerationFailed)
	}
	return answer, nil
}

func (g *Generator) buildAnswerPrompt(req AnswerRequest) string {
	startup := strings.TrimSpace(req.StartupName)
	if startup == "" {
		startup = "our startup"
	}

	labeled := make([]string, 0, len(req.Context))
	for _, c := range req.Context {
		labeled = append(labeled, fmt.Sprintf("[From %s]: %s", c.DocumentName, strings.TrimSpace(c.ChunkContent)))
	}
	labeled = llm.FitToBudget(labeled, g.contextTokens)

	var sb strings.Builder
	if grant := strings.TrimSpace(req.GrantName); grant != "" {
		fmt.Fprintf(&sb, "Grant: %s\n", grant)
	}
	fmt.Fprintf(&sb, "Grant application question: %s\n", req.Question)
	fmt.Fprintf(&sb, "Startup: %s\n\n", startup)

	if len(labeled) > 0 {
		sb.WriteString("Information from the startup's own documents:\n")
		sb.WriteString(strings.Join(labeled, "\n\n"))
		sb.WriteString("\n\nBase the answer on this information. Do not invent figures that are not stated.\n")
	} else {
		fmt.Fprintf(&sb, "No document excerpts are available. Answer from general knowledge of an early-stage startup like %s, "+
			"keeping claims plausible and avoiding specific figures.\n", startup)
	}

	fmt.Fprintf(&sb, "\nWrite in a %s tone and keep the answer under %d words.", req.Tone, req.MaxLength)
	return sb.String()
}

// GenerateFollowUpEmail drafts a follow-up email. A reply that is not the expected
// JSON object is a generation failure.
func (g *Generator) GenerateFollowUpEmail(ctx context.Context, req FollowUpRequest) (FollowUpEmail, error) {
	recipient := strings.TrimSpace(req.RecipientTitle)
	if recipient == "" {
		recipient = "Program Officer"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Grant: %s\n", req.GrantName)
	fmt.Fprintf(&sb, "Startup: %s\n", req.StartupName)
	fmt.Fprintf(&sb, "What the startup does: %s\n", req.Description)
	if len(req.Achievements) > 0 {
		fmt.Fprintf(&sb, "Recent achievements:\n- %s\n", strings.Join(req.Achievements, "\n- "))
	}
	fmt.Fprintf(&sb, "Sender: %s\nRecipient: %s\n\n", req.SenderName, recipient)
	sb.WriteString("Write a follow-up email about the application that is under 200 words and signed by the sender.")

	start := time.Now()
	reply, err := g.provider.Generate(ctx, llm.Request{
		System:      emailSystemPrompt,
		User:        sb.String(),
		Temperature: config.ModelTemperature,
		JSON:        true,
	})
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		return FollowUpEmail{}, err
	}

	var email FollowUpEmail
	if err := json.Unmarshal([]byte(llm.CleanJSONObject(reply)), &email); err != nil {
		return FollowUpEmail{}, fmt.Errorf("%w: follow-up email is not valid JSON: %w", commonModels.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(email.Subject) == "" || strings.TrimSpace(email.Body) == "" {
		return FollowUpEmail{}, fmt.Errorf("%w: follow-up email is missing subject or body", commonModels.ErrGenerationFailed)
	}
	return email, nil
}
