package grantModel

import (
	"time"
)

type Stage string

const (
	StageIdea         Stage = "idea"
	StagePrototype    Stage = "prototype"
	StageMVP          Stage = "mvp"
	StageEarlyRevenue Stage = "early_revenue"
	StageGrowth       Stage = "growth"
	StageScaling      Stage = "scaling"
)

// EntityNotIncorporated is the entity type of a founder team with no registered company.
const EntityNotIncorporated = "not_incorporated"

type StartupProfile struct {
	Id                string     `json:"id"`
	OwnerId           string     `json:"owner_id"`
	OwnerEmail        string     `json:"owner_email"`
	Name              string     `json:"name"`
	Sector            string     `json:"sector"`
	Stage             Stage      `json:"stage"`
	EntityType        string     `json:"entity_type"`
	IsDPIITRegistered bool       `json:"is_dpiit_registered"`
	IsWomenLed        bool       `json:"is_women_led"`
	AnnualRevenue     *float64   `json:"annual_revenue,omitempty"`
	FoundingDate      *time.Time `json:"founding_date,omitempty"`
	IncorporationDate *time.Time `json:"incorporation_date,omitempty"`
	State             string     `json:"state"`
	TeamSize          int        `json:"team_size"`
}

// EligibilityCriteria is the typed shape of a grant's eligibility rules.
type EligibilityCriteria struct {
	MinAgeMonths          *int     `json:"min_age_months,omitempty"`
	MaxAgeMonths          *int     `json:"max_age_months,omitempty"`
	MinRevenue            *float64 `json:"min_revenue,omitempty"`
	MaxRevenue            *float64 `json:"max_revenue,omitempty"`
	IncorporationRequired bool     `json:"incorporation_required"`
	DPIITRequired         bool     `json:"dpiit_required"`
	WomenLed              bool     `json:"women_led"`
	States                []string `json:"states"`
	EntityTypes           []string `json:"entity_types"`
}

type GrantQuestion struct {
	Id        string `json:"id"`
	Prompt    string `json:"question"`
	MaxLength *int   `json:"max_length,omitempty"`
	Required  bool   `json:"required"`
}

type Grant struct {
	Id                  string              `json:"id"`
	ExternalId          string              `json:"external_id,omitempty"`
	Name                string              `json:"name"`
	Provider            string              `json:"provider"`
	ProviderType        string              `json:"provider_type"`
	AmountMin           *float64            `json:"amount_min,omitempty"`
	AmountMax           *float64            `json:"amount_max,omitempty"`
	Deadline            *time.Time          `json:"deadline,omitempty"`
	Description         string              `json:"description"`
	Sectors             []string            `json:"sectors"`
	Stages              []string            `json:"stages"`
	EligibilityCriteria EligibilityCriteria `json:"eligibility_criteria"`
	URL                 string              `json:"url"`
	ContactEmail        *string             `json:"contact_email,omitempty"`
	IsActive            bool                `json:"is_active"`
	Questions           []GrantQuestion     `json:"questions"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type Application struct {
	Id        string    `json:"id"`
	StartupId string    `json:"startup_id"`
	GrantId   string    `json:"grant_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ApplicationAnswer struct {
	QuestionId      string    `json:"question_id"`
	GeneratedAnswer string    `json:"generated_answer"`
	EditedAnswer    *string   `json:"edited_answer,omitempty"`
	Sources         []string  `json:"sources"`
	IsEdited        bool      `json:"is_edited"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FinalText is what the founder will submit for the question.
func (a ApplicationAnswer) FinalText() string {
	if a.IsEdited && a.EditedAnswer != nil {
		return *a.EditedAnswer
	}
	return a.GeneratedAnswer
}

type WatchlistEntry struct {
	StartupId      string `json:"startup_id"`
	GrantId        string `json:"grant_id"`
	NotifyDeadline bool   `json:"notify_deadline"`
}

type Notification struct {
	Id        string    `json:"id"`
	StartupId string    `json:"startup_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	GrantId   string    `json:"grant_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

const NotificationKindDeadline = "deadline_reminder"

// MatchResult is computed on demand and never stored.
type MatchResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
