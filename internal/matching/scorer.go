package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
)

const (
	sectorPoints      = 40
	stagePoints       = 15
	revenuePoints     = 20
	agePoints         = 10
	unknownAgePoints  = 5
	entityPoints      = 5
	dpiitBonus        = 5
	dpiitPenalty      = 10
	womenLedBonus     = 5
	daysPerMonth      = 30
	maxScore          = 100
	ReasonSector      = "Sector match"
	ReasonOpenSector  = "Open to all sectors"
	ReasonStage       = "Stage match"
	ReasonRevenue     = "Revenue within range"
	ReasonAge         = "Company age eligible"
	ReasonAgeUnknown  = "Company age unknown"
	ReasonEntity      = "Entity type eligible"
	ReasonDPIIT       = "DPIIT registered"
	ReasonDPIITNeeded = "DPIIT registration required"
	ReasonWomenLed    = "Women-led bonus"
)

// Score rates how well startup fits grant on a 0 to 100 scale. Reasons follow the
// order the checks run in.
func Score(startup grantModel.StartupProfile, grant grantModel.Grant, now time.Time) grantModel.MatchResult {
	criteria := grant.EligibilityCriteria
	score := 0
	reasons := []string{}

	switch {
	case containsFold(grant.Sectors, startup.Sector):
		score += sectorPoints
		reasons = append(reasons, ReasonSector)
	case sectorOpen(grant.Sectors):
		score += sectorPoints
		reasons = append(reasons, ReasonOpenSector)
	}

	if len(grant.Stages) == 0 || containsFold(grant.Stages, string(startup.Stage)) {
		score += stagePoints
		reasons = append(reasons, ReasonStage)
	}

	revenue := 0.0
	if startup.AnnualRevenue != nil {
		revenue = *startup.AnnualRevenue
	}
	if (criteria.MinRevenue == nil || revenue >= *criteria.MinRevenue) &&
		(criteria.MaxRevenue == nil || revenue <= *criteria.MaxRevenue) {
		score += revenuePoints
		reasons = append(reasons, ReasonRevenue)
	}

	if startup.FoundingDate == nil {
		score += unknownAgePoints
		reasons = append(reasons, ReasonAgeUnknown)
	} else {
		months := AgeInMonths(*startup.FoundingDate, now)
		if (criteria.MinAgeMonths == nil || months >= *criteria.MinAgeMonths) &&
			(criteria.MaxAgeMonths == nil || months <= *criteria.MaxAgeMonths) {
			score += agePoints
			reasons = append(reasons, ReasonAge)
		}
	}

	notIncorporated := strings.EqualFold(startup.EntityType, grantModel.EntityNotIncorporated)
	if !(criteria.IncorporationRequired && notIncorporated) &&
		(len(criteria.EntityTypes) == 0 || containsFold(criteria.EntityTypes, startup.EntityType)) {
		score += entityPoints
		reasons = append(reasons, ReasonEntity)
	}

	if criteria.DPIITRequired {
		if startup.IsDPIITRegistered {
			score += dpiitBonus
			reasons = append(reasons, ReasonDPIIT)
		} else {
			score -= dpiitPenalty
			reasons = append(reasons, ReasonDPIITNeeded)
		}
	}

	if criteria.WomenLed && startup.IsWomenLed {
		score += womenLedBonus
		reasons = append(reasons, ReasonWomenLed)
	}

	return grantModel.MatchResult{Score: clamp(score, 0, maxScore), Reasons: reasons}
}

// AgeInMonths counts whole 30-day months between founded and now.
func AgeInMonths(founded time.Time, now time.Time) int {
	days := int(now.Sub(founded).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / daysPerMonth
}

type Recommendation struct {
	Grant grantModel.Grant       `json:"grant"`
	Match grantModel.MatchResult `json:"match"`
}

// Recommend ranks the active, still-open grants by score. Ties go to the earlier deadline.
func Recommend(startup grantModel.StartupProfile, grants []grantModel.Grant, limit int, now time.Time) []Recommendation {
	out := make([]Recommendation, 0, len(grants))
	for _, g := range grants {
		if !g.IsActive || (g.Deadline != nil && g.Deadline.Before(now)) {
			continue
		}
		out = append(out, Recommendation{Grant: g, Match: Score(startup, g, now)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Match.Score != out[j].Match.Score {
			return out[i].Match.Score > out[j].Match.Score
		}
		return deadlineBefore(out[i].Grant.Deadline, out[j].Grant.Deadline)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MatchesProfile is the sector and stage filter the weekly digest uses.
func MatchesProfile(startup grantModel.StartupProfile, grant grantModel.Grant) bool {
	sectorOk := sectorOpen(grant.Sectors) || containsFold(grant.Sectors, startup.Sector)
	stageOk := len(grant.Stages) == 0 || containsFold(grant.Stages, string(startup.Stage))
	return sectorOk && stageOk
}

func deadlineBefore(a *time.Time, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

func sectorOpen(sectors []string) bool {
	if len(sectors) == 0 {
		return true
	}
	return containsFold(sectors, "all") || containsFold(sectors, "any")
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
