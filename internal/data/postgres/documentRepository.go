package postgres

import (
	"context"
	"fmt"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id::text, startup_id::text, file_name, file_type, file_size, storage_path,
	status, metadata, error_message, created_at, updated_at`

func scanDocument(row pgx.Row) (commonModels.Document, error) {
	var d commonModels.Document
	err := row.Scan(&d.Id, &d.StartupId, &d.FileName, &d.FileType, &d.FileSize, &d.StoragePath,
		&d.Status, &d.Metadata, &d.ErrorMessage, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *DocumentRepository) Create(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	if doc.Status == "" {
		doc.Status = commonModels.DocStatusPending
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (startup_id, file_name, file_type, file_size, storage_path, status)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING `+documentColumns,
		doc.StartupId, doc.FileName, string(doc.FileType), doc.FileSize, doc.StoragePath, string(doc.Status))
	created, err := scanDocument(row)
	if err != nil {
		return commonModels.Document{}, wrapErr("create document", err)
	}
	return created, nil
}

func (r *DocumentRepository) Get(ctx context.Context, startupId string, id string) (commonModels.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+`
		FROM documents WHERE id = $1::uuid AND startup_id = $2::uuid`, id, startupId)
	d, err := scanDocument(row)
	if err != nil {
		return commonModels.Document{}, wrapErr("get document", err)
	}
	return d, nil
}

func (r *DocumentRepository) ListByStartup(ctx context.Context, startupId string) ([]commonModels.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+`
		FROM documents WHERE startup_id = $1::uuid ORDER BY created_at DESC`, startupId)
	if err != nil {
		return nil, wrapErr("list documents", err)
	}
	defer rows.Close()

	docs := []commonModels.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, wrapErr("scan document", err)
		}
		docs = append(docs, d)
	}
	return docs, wrapErr("list documents", rows.Err())
}

// UpdateStatus moves a document along the status machine. The current status is
// locked first so concurrent workers cannot both claim the same transition.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, startupId string, id string, status commonModels.DocStatus, errorMessage *string) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current commonModels.DocStatus
		err := tx.QueryRow(ctx, `SELECT status FROM documents
			WHERE id = $1::uuid AND startup_id = $2::uuid FOR UPDATE`, id, startupId).Scan(&current)
		if err != nil {
			return wrapErr("lock document", err)
		}

		isRetry := status == commonModels.DocStatusPending
		if current != status && !commonModels.CanTransition(current, status, isRetry) {
			return fmt.Errorf("%w: %s -> %s", commonModels.ErrInvalidTransition, current, status)
		}

		if status == commonModels.DocStatusPending {
			_, err = tx.Exec(ctx, `UPDATE documents
				SET status = $3, error_message = NULL, metadata = NULL, updated_at = now()
				WHERE id = $1::uuid AND startup_id = $2::uuid`, id, startupId, string(status))
		} else {
			_, err = tx.Exec(ctx, `UPDATE documents
				SET status = $3, error_message = $4, updated_at = now()
				WHERE id = $1::uuid AND startup_id = $2::uuid`, id, startupId, string(status), errorMessage)
		}
		return wrapErr("update document status", err)
	})
}

// Complete records metadata and marks the document completed in one statement.
func (r *DocumentRepository) Complete(ctx context.Context, startupId string, id string, metadata commonModels.DocumentMetadata) error {
	tag, err := r.pool.Exec(ctx, `UPDATE documents
		SET status = $3, metadata = $4, error_message = NULL, updated_at = now()
		WHERE id = $1::uuid AND startup_id = $2::uuid AND status IN ('processing', 'completed')`,
		id, startupId, string(commonModels.DocStatusCompleted), metadata)
	if err != nil {
		return wrapErr("complete document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete document %s: %w", id, commonModels.ErrInvalidTransition)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, startupId string, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1::uuid AND startup_id = $2::uuid`, id, startupId)
	if err != nil {
		return wrapErr("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete document %s: %w", id, commonModels.ErrNotFound)
	}
	return nil
}
