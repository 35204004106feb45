package metadata

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

const systemPrompt = `You extract structured facts about a startup from its documents.
Reply with a single JSON object with exactly these keys:
"company_name", "sector", "product_description", "key_achievements", "team_info", "traction", "funding_raised".
"key_achievements" is an array of short strings. Use null for anything the text does not state. Do not guess.`

var logger = logger_i.NewLogger("Metadata")

type Extractor struct {
	provider llm.Provider
	maxChars int
}

func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider, maxChars: config.MetadataMaxInputChars}
}

// ExtractMetadata pulls a startup profile out of document text. It never fails:
// any provider error or unreadable reply yields the empty metadata record.
func (e *Extractor) ExtractMetadata(ctx context.Context, text string) commonModels.DocumentMetadata {
	log := logger.FromContext(ctx)

	input := truncateRunes(text, e.maxChars)
	if strings.TrimSpace(input) == "" {
		return commonModels.EmptyMetadata()
	}

	start := time.Now()
	reply, err := e.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		User:        "Document text:\n\n" + input,
		Temperature: config.MetadataTemperature,
		JSON:        true,
	})
	metrics.CaptureExecutionMetrics("metadata_extraction", time.Since(start))
	if err != nil {
		log.Warn("Metadata extraction failed, using empty metadata", "error", err)
		return commonModels.EmptyMetadata()
	}

	meta, ok := parseMetadata(reply)
	if !ok {
		log.Warn("Metadata reply was not valid JSON, using empty metadata")
		return commonModels.EmptyMetadata()
	}
	return meta
}

func parseMetadata(reply string) (commonModels.DocumentMetadata, bool) {
	var meta commonModels.DocumentMetadata
	if err := json.Unmarshal([]byte(llm.CleanJSONObject(reply)), &meta); err != nil {
		return commonModels.DocumentMetadata{}, false
	}
	if meta.KeyAchievements == nil {
		meta.KeyAchievements = []string{}
	}
	for _, p := range []**string{&meta.CompanyName, &meta.Sector, &meta.ProductDescription, &meta.TeamInfo, &meta.Traction, &meta.FundingRaised} {
		if *p != nil && strings.TrimSpace(**p) == "" {
			*p = nil
		}
	}
	return meta, true
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
