package postgres

import (
	"context"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StartupRepository struct {
	pool *pgxpool.Pool
}

func NewStartupRepository(pool *pgxpool.Pool) *StartupRepository {
	return &StartupRepository{pool: pool}
}

const startupColumns = `id::text, owner_id, owner_email, name, sector, stage, entity_type,
	is_dpiit_registered, is_women_led, annual_revenue, founding_date, incorporation_date, state, team_size`

func scanStartup(row pgx.Row) (grantModel.StartupProfile, error) {
	var s grantModel.StartupProfile
	err := row.Scan(&s.Id, &s.OwnerId, &s.OwnerEmail, &s.Name, &s.Sector, &s.Stage, &s.EntityType,
		&s.IsDPIITRegistered, &s.IsWomenLed, &s.AnnualRevenue, &s.FoundingDate, &s.IncorporationDate,
		&s.State, &s.TeamSize)
	return s, err
}

func (r *StartupRepository) Get(ctx context.Context, id string) (grantModel.StartupProfile, error) {
	s, err := scanStartup(r.pool.QueryRow(ctx, `SELECT `+startupColumns+` FROM startups WHERE id = $1::uuid`, id))
	if err != nil {
		return grantModel.StartupProfile{}, wrapErr("get startup", err)
	}
	return s, nil
}

func (r *StartupRepository) ListAll(ctx context.Context) ([]grantModel.StartupProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+startupColumns+` FROM startups ORDER BY created_at`)
	if err != nil {
		return nil, wrapErr("list startups", err)
	}
	defer rows.Close()

	var out []grantModel.StartupProfile
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, wrapErr("scan startup", err)
		}
		out = append(out, s)
	}
	return out, wrapErr("list startups", rows.Err())
}
