package matching

import (
	"math/rand"
	"testing"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func techStartup() grantModel.StartupProfile {
	return grantModel.StartupProfile{
		Id:         "s1",
		Name:       "Acme",
		Sector:     "technology",
		Stage:      grantModel.StageMVP,
		EntityType: "private_limited",
	}
}

func TestScoreDPIITScenario(t *testing.T) {
	grant := grantModel.Grant{
		Sectors:             []string{"technology"},
		EligibilityCriteria: grantModel.EligibilityCriteria{DPIITRequired: true},
	}
	unregistered := techStartup()
	registered := techStartup()
	registered.IsDPIITRegistered = true

	low := Score(unregistered, grant, now)
	high := Score(registered, grant, now)

	assert.Equal(t, 15, high.Score-low.Score)
	assert.Contains(t, low.Reasons, ReasonDPIITNeeded)
	assert.Contains(t, high.Reasons, ReasonDPIIT)
}

func TestScoreFullRubric(t *testing.T) {
	startup := techStartup()
	startup.AnnualRevenue = ptr(500000.0)
	startup.FoundingDate = ptr(now.AddDate(0, 0, -400)) // 13 months
	startup.IsDPIITRegistered = true
	startup.IsWomenLed = true

	grant := grantModel.Grant{
		Sectors: []string{"Technology", "health"},
		Stages:  []string{"mvp"},
		EligibilityCriteria: grantModel.EligibilityCriteria{
			MinRevenue:    ptr(0.0),
			MaxRevenue:    ptr(1000000.0),
			MinAgeMonths:  ptr(6),
			MaxAgeMonths:  ptr(24),
			EntityTypes:   []string{"private_limited", "llp"},
			DPIITRequired: true,
			WomenLed:      true,
		},
	}

	res := Score(startup, grant, now)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, []string{ReasonSector, ReasonStage, ReasonRevenue, ReasonAge, ReasonEntity, ReasonDPIIT, ReasonWomenLed}, res.Reasons)
}

func TestScoreOpenSectorAndUnknownAge(t *testing.T) {
	res := Score(techStartup(), grantModel.Grant{Sectors: []string{"all"}}, now)
	// 40 sector + 15 stage + 20 revenue + 5 unknown age + 5 entity
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, ReasonOpenSector, res.Reasons[0])
	assert.Contains(t, res.Reasons, ReasonAgeUnknown)
}

func TestScoreExplicitSectorBeatsOpenList(t *testing.T) {
	res := Score(techStartup(), grantModel.Grant{Sectors: []string{"all", "Technology"}}, now)
	assert.Equal(t, ReasonSector, res.Reasons[0])
	assert.NotContains(t, res.Reasons, ReasonOpenSector)
}

func TestScoreRevenueDefaultsToZero(t *testing.T) {
	grant := grantModel.Grant{EligibilityCriteria: grantModel.EligibilityCriteria{MinRevenue: ptr(100.0)}}
	res := Score(techStartup(), grant, now)
	assert.NotContains(t, res.Reasons, ReasonRevenue)
}

func TestScoreIncorporationOverridesEntityList(t *testing.T) {
	startup := techStartup()
	startup.EntityType = grantModel.EntityNotIncorporated
	grant := grantModel.Grant{EligibilityCriteria: grantModel.EligibilityCriteria{
		IncorporationRequired: true,
		EntityTypes:           []string{grantModel.EntityNotIncorporated},
	}}
	assert.NotContains(t, Score(startup, grant, now).Reasons, ReasonEntity)
}

func TestScoreClampsAtZero(t *testing.T) {
	startup := techStartup()
	startup.Stage = grantModel.StageIdea
	startup.FoundingDate = ptr(now.AddDate(-10, 0, 0))
	grant := grantModel.Grant{
		Sectors: []string{"agriculture"},
		Stages:  []string{"growth"},
		EligibilityCriteria: grantModel.EligibilityCriteria{
			MinRevenue:    ptr(1e9),
			MaxAgeMonths:  ptr(12),
			EntityTypes:   []string{"llp"},
			DPIITRequired: true,
		},
	}
	res := Score(startup, grant, now)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, []string{ReasonDPIITNeeded}, res.Reasons)
}

func TestScoreBounds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	sectors := []string{"technology", "health", "all", "agriculture"}
	for i := 0; i < 500; i++ {
		startup := techStartup()
		startup.Sector = sectors[r.Intn(len(sectors))]
		startup.IsDPIITRegistered = r.Intn(2) == 0
		startup.IsWomenLed = r.Intn(2) == 0
		if r.Intn(2) == 0 {
			startup.FoundingDate = ptr(now.AddDate(0, -r.Intn(120), 0))
		}
		grant := grantModel.Grant{
			Sectors: []string{sectors[r.Intn(len(sectors))]},
			EligibilityCriteria: grantModel.EligibilityCriteria{
				DPIITRequired: r.Intn(2) == 0,
				WomenLed:      r.Intn(2) == 0,
				MaxAgeMonths:  ptr(r.Intn(60)),
			},
		}
		res := Score(startup, grant, now)
		require.GreaterOrEqual(t, res.Score, 0)
		require.LessOrEqual(t, res.Score, 100)
	}
}

func TestAgeInMonths(t *testing.T) {
	assert.Equal(t, 0, AgeInMonths(now.AddDate(0, 0, -29), now))
	assert.Equal(t, 1, AgeInMonths(now.AddDate(0, 0, -30), now))
	assert.Equal(t, 12, AgeInMonths(now.AddDate(0, 0, -365), now))
	assert.Equal(t, 0, AgeInMonths(now.AddDate(0, 0, 10), now))
}

func TestRecommend(t *testing.T) {
	soon := now.AddDate(0, 0, 5)
	later := now.AddDate(0, 1, 0)
	past := now.AddDate(0, 0, -1)
	grants := []grantModel.Grant{
		{Id: "later", IsActive: true, Deadline: &later},
		{Id: "other-sector", IsActive: true, Sectors: []string{"agriculture"}},
		{Id: "soon", IsActive: true, Deadline: &soon},
		{Id: "closed", IsActive: true, Deadline: &past},
		{Id: "inactive", IsActive: false},
	}

	recs := Recommend(techStartup(), grants, 2, now)
	require.Len(t, recs, 2)
	assert.Equal(t, "soon", recs[0].Grant.Id)
	assert.Equal(t, "later", recs[1].Grant.Id)
}

func TestMatchesProfile(t *testing.T) {
	assert.True(t, MatchesProfile(techStartup(), grantModel.Grant{}))
	assert.True(t, MatchesProfile(techStartup(), grantModel.Grant{Sectors: []string{"TECHNOLOGY"}, Stages: []string{"mvp"}}))
	assert.False(t, MatchesProfile(techStartup(), grantModel.Grant{Stages: []string{"growth"}}))
}
