package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
)

var errNoJSON = errors.New("no JSON found in model reply")

// extractedGrant is one grant as the model describes it.
type extractedGrant struct {
	Name                string                         `json:"name"`
	Provider            string                         `json:"provider"`
	AmountMin           *float64                       `json:"amount_min"`
	AmountMax           *float64                       `json:"amount_max"`
	Deadline            *string                        `json:"deadline"`
	Description         string                         `json:"description"`
	Sectors             []string                       `json:"sectors"`
	Stages              []string                       `json:"stages"`
	EligibilityCriteria grantModel.EligibilityCriteria `json:"eligibility_criteria"`
	ApplicationURL      *string                        `json:"application_url"`
	ContactEmail        *string                        `json:"contact_email"`
	IsActive            *bool                          `json:"is_active"`

	ExternalId string `json:"-"`
	SourceURL  string `json:"-"`
	SourceType string `json:"-"`
}

// link is the page a founder should open: the application page when known.
func (g extractedGrant) link() string {
	if g.ApplicationURL != nil && strings.TrimSpace(*g.ApplicationURL) != "" {
		return strings.TrimSpace(*g.ApplicationURL)
	}
	return g.SourceURL
}

// parseGrants reads the model's reply. It accepts a bare array, an array wrapped
// in prose or code fences, a {"grants": [...]} object, or a single grant object.
// Items without a string name and provider are skipped.
func parseGrants(reply string) (grants []extractedGrant, skipped int, err error) {
	text := unfence(reply)

	arrayAt := strings.IndexByte(text, '[')
	objectAt := strings.IndexByte(text, '{')

	var items []json.RawMessage
	switch {
	case arrayAt >= 0 && (objectAt < 0 || arrayAt < objectAt):
		span, ok := llm.ExtractBalanced(text, '[', ']')
		if !ok {
			return nil, 0, errNoJSON
		}
		if err := json.Unmarshal([]byte(span), &items); err != nil {
			return nil, 0, fmt.Errorf("decode grant array: %w", err)
		}
	case objectAt >= 0:
		span, ok := llm.ExtractBalanced(text, '{', '}')
		if !ok {
			return nil, 0, errNoJSON
		}
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(span), &wrapper); err != nil {
			return nil, 0, fmt.Errorf("decode grant object: %w", err)
		}
		if inner, ok := wrapper["grants"]; ok && json.Unmarshal(inner, &items) == nil {
			break
		}
		items = []json.RawMessage{json.RawMessage(span)}
	default:
		return nil, 0, errNoJSON
	}

	for _, raw := range items {
		g, ok := decodeGrant(raw)
		if !ok {
			skipped++
			continue
		}
		grants = append(grants, g)
	}
	return grants, skipped, nil
}

func decodeGrant(raw json.RawMessage) (extractedGrant, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return extractedGrant{}, false
	}
	var name, provider string
	if json.Unmarshal(fields["name"], &name) != nil || json.Unmarshal(fields["provider"], &provider) != nil {
		return extractedGrant{}, false
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(provider) == "" {
		return extractedGrant{}, false
	}

	var g extractedGrant
	if err := json.Unmarshal(raw, &g); err != nil {
		// Keep the identity when optional fields have unexpected types.
		g = extractedGrant{}
	}
	g.Name, g.Provider = strings.TrimSpace(name), strings.TrimSpace(provider)
	g.ExternalId = ExternalID(g.Name, g.Provider)
	return g, true
}

func unfence(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	return llm.StripCodeFences(s[start:])
}

// ExternalID is the stable identifier of a grant: the first 12 hex characters of
// sha256("name-provider") over the trimmed, lower-cased values.
func ExternalID(name string, provider string) string {
	key := strings.ToLower(strings.TrimSpace(name)) + "-" + strings.ToLower(strings.TrimSpace(provider))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}

var providerTypes = map[string]string{
	"government": "government",
	"csr":        "csr",
	"aggregator": "private",
	"private":    "private",
	"ngo":        "ngo",
}

func providerType(sourceType string) string {
	if t, ok := providerTypes[strings.ToLower(sourceType)]; ok {
		return t
	}
	return "government"
}

func parseDeadline(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// toGrant maps an extracted grant onto the stored shape.
func (g extractedGrant) toGrant() grantModel.Grant {
	out := grantModel.Grant{
		ExternalId:          g.ExternalId,
		Name:                g.Name,
		Provider:            g.Provider,
		ProviderType:        providerType(g.SourceType),
		AmountMin:           g.AmountMin,
		AmountMax:           g.AmountMax,
		Deadline:            parseDeadline(g.Deadline),
		Description:         strings.TrimSpace(g.Description),
		Sectors:             nonNil(g.Sectors),
		Stages:              nonNil(g.Stages),
		EligibilityCriteria: g.EligibilityCriteria,
		URL:                 g.link(),
		ContactEmail:        g.ContactEmail,
		IsActive:            g.IsActive == nil || *g.IsActive,
	}
	if out.Description == "" {
		out.Description = "No description available"
	}
	out.EligibilityCriteria.States = nonNil(out.EligibilityCriteria.States)
	out.EligibilityCriteria.EntityTypes = nonNil(out.EligibilityCriteria.EntityTypes)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
