package llm

import (
	"sync"

	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func loadEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger_i.NewLogger("llm").Warn("tiktoken encoding unavailable, estimating tokens", "error", err)
			return
		}
		encoding = enc
	})
	return encoding
}

// CountTokens counts cl100k tokens, or estimates one token per four characters
// when the encoding cannot be loaded.
func CountTokens(text string) int {
	if enc := loadEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

func EstimateTokens(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}

// FitToBudget keeps the leading items whose combined token count stays within budget.
// The first item is always kept so a single oversized chunk still gives context.
func FitToBudget(items []string, budget int) []string {
	if budget <= 0 {
		return items
	}
	used := 0
	for i, item := range items {
		used += CountTokens(item)
		if used > budget && i > 0 {
			return items[:i]
		}
	}
	return items
}
