package postgres

import (
	"context"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GrantRepository struct {
	pool *pgxpool.Pool
}

func NewGrantRepository(pool *pgxpool.Pool) *GrantRepository {
	return &GrantRepository{pool: pool}
}

const grantColumns = `id::text, coalesce(external_id, ''), name, provider, provider_type, amount_min, amount_max,
	deadline, description, sectors, stages, eligibility_criteria, url, contact_email, is_active, questions,
	created_at, updated_at`

func scanGrant(row pgx.Row) (grantModel.Grant, error) {
	var g grantModel.Grant
	err := row.Scan(&g.Id, &g.ExternalId, &g.Name, &g.Provider, &g.ProviderType, &g.AmountMin, &g.AmountMax,
		&g.Deadline, &g.Description, &g.Sectors, &g.Stages, &g.EligibilityCriteria, &g.URL, &g.ContactEmail,
		&g.IsActive, &g.Questions, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *GrantRepository) collect(ctx context.Context, op string, query string, args ...any) ([]grantModel.Grant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var out []grantModel.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, g)
	}
	return out, wrapErr(op, rows.Err())
}

func (r *GrantRepository) Get(ctx context.Context, id string) (grantModel.Grant, error) {
	g, err := scanGrant(r.pool.QueryRow(ctx, `SELECT `+grantColumns+` FROM grants WHERE id = $1::uuid`, id))
	if err != nil {
		return grantModel.Grant{}, wrapErr("get grant", err)
	}
	return g, nil
}

func (r *GrantRepository) ListActive(ctx context.Context) ([]grantModel.Grant, error) {
	return r.collect(ctx, "list active grants",
		`SELECT `+grantColumns+` FROM grants WHERE is_active ORDER BY deadline NULLS LAST`)
}

func (r *GrantRepository) ListByIds(ctx context.Context, ids []string) ([]grantModel.Grant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.collect(ctx, "list grants by id",
		`SELECT `+grantColumns+` FROM grants WHERE id = ANY($1::uuid[])`, ids)
}

func (r *GrantRepository) ListDeadlineBetween(ctx context.Context, from time.Time, to time.Time) ([]grantModel.Grant, error) {
	return r.collect(ctx, "list grants by deadline",
		`SELECT `+grantColumns+` FROM grants
		WHERE is_active AND deadline >= $1 AND deadline < $2 ORDER BY deadline`, from, to)
}

func (r *GrantRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]grantModel.Grant, error) {
	return r.collect(ctx, "list new grants",
		`SELECT `+grantColumns+` FROM grants WHERE is_active AND created_at >= $1 ORDER BY created_at DESC`, since)
}

// UpsertByNameProvider inserts or refreshes a grant keyed on (name, provider).
// xmax is zero only for rows created by this statement.
func (r *GrantRepository) UpsertByNameProvider(ctx context.Context, g grantModel.Grant) (bool, error) {
	if g.Sectors == nil {
		g.Sectors = []string{}
	}
	if g.Stages == nil {
		g.Stages = []string{}
	}
	if g.Questions == nil {
		g.Questions = []grantModel.GrantQuestion{}
	}

	var inserted bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO grants (external_id, name, provider, provider_type, amount_min, amount_max, deadline,
			description, sectors, stages, eligibility_criteria, url, contact_email, is_active, questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (name, provider) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			provider_type = EXCLUDED.provider_type,
			amount_min = EXCLUDED.amount_min,
			amount_max = EXCLUDED.amount_max,
			deadline = EXCLUDED.deadline,
			description = EXCLUDED.description,
			sectors = EXCLUDED.sectors,
			stages = EXCLUDED.stages,
			eligibility_criteria = EXCLUDED.eligibility_criteria,
			url = EXCLUDED.url,
			contact_email = EXCLUDED.contact_email,
			is_active = EXCLUDED.is_active,
			updated_at = now()
		RETURNING (xmax = 0)`,
		g.ExternalId, g.Name, g.Provider, g.ProviderType, g.AmountMin, g.AmountMax, g.Deadline,
		g.Description, g.Sectors, g.Stages, g.EligibilityCriteria, g.URL, g.ContactEmail, g.IsActive, g.Questions,
	).Scan(&inserted)
	if err != nil {
		return false, wrapErr("upsert grant", err)
	}
	return inserted, nil
}
