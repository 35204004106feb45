package postgres

import (
	"context"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) GetOrCreate(ctx context.Context, startupId string, grantId string) (grantModel.Application, error) {
	var a grantModel.Application
	err := r.pool.QueryRow(ctx, `
		INSERT INTO applications (startup_id, grant_id) VALUES ($1::uuid, $2::uuid)
		ON CONFLICT (startup_id, grant_id) DO UPDATE SET updated_at = applications.updated_at
		RETURNING id::text, startup_id::text, grant_id::text, status, created_at, updated_at`,
		startupId, grantId,
	).Scan(&a.Id, &a.StartupId, &a.GrantId, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return grantModel.Application{}, wrapErr("get or create application", err)
	}
	return a, nil
}

func (r *ApplicationRepository) GetAnswers(ctx context.Context, applicationId string) ([]grantModel.ApplicationAnswer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question_id, generated_answer, edited_answer, sources, is_edited, updated_at
		FROM application_answers WHERE application_id = $1::uuid ORDER BY question_id`, applicationId)
	if err != nil {
		return nil, wrapErr("get answers", err)
	}
	defer rows.Close()

	var out []grantModel.ApplicationAnswer
	for rows.Next() {
		var a grantModel.ApplicationAnswer
		if err := rows.Scan(&a.QuestionId, &a.GeneratedAnswer, &a.EditedAnswer, &a.Sources, &a.IsEdited, &a.UpdatedAt); err != nil {
			return nil, wrapErr("scan answer", err)
		}
		out = append(out, a)
	}
	return out, wrapErr("get answers", rows.Err())
}

// SaveAnswers upserts every answer in one transaction.
func (r *ApplicationRepository) SaveAnswers(ctx context.Context, applicationId string, answers []grantModel.ApplicationAnswer) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range answers {
			sources := a.Sources
			if sources == nil {
				sources = []string{}
			}
			batch.Queue(`
				INSERT INTO application_answers (application_id, question_id, generated_answer, edited_answer, sources, is_edited)
				VALUES ($1::uuid, $2, $3, $4, $5, $6)
				ON CONFLICT (application_id, question_id) DO UPDATE SET
					generated_answer = EXCLUDED.generated_answer,
					edited_answer = EXCLUDED.edited_answer,
					sources = EXCLUDED.sources,
					is_edited = EXCLUDED.is_edited,
					updated_at = now()`,
				applicationId, a.QuestionId, a.GeneratedAnswer, a.EditedAnswer, sources, a.IsEdited)
		}
		batch.Queue(`UPDATE applications SET updated_at = now() WHERE id = $1::uuid`, applicationId)

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return wrapErr("save answers", err)
		}
		return nil
	})
}
