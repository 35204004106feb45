package postgres

import "fmt"

func schemaStatements(embeddingDimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS startups (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id TEXT NOT NULL DEFAULT '',
			owner_email TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			sector TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL DEFAULT 'idea',
			entity_type TEXT NOT NULL DEFAULT '',
			is_dpiit_registered BOOLEAN NOT NULL DEFAULT FALSE,
			is_women_led BOOLEAN NOT NULL DEFAULT FALSE,
			annual_revenue DOUBLE PRECISION,
			founding_date DATE,
			incorporation_date DATE,
			state TEXT NOT NULL DEFAULT '',
			team_size INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS grants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			external_id TEXT,
			name TEXT NOT NULL,
			provider TEXT NOT NULL,
			provider_type TEXT NOT NULL DEFAULT 'government',
			amount_min DOUBLE PRECISION,
			amount_max DOUBLE PRECISION,
			deadline TIMESTAMPTZ,
			description TEXT NOT NULL DEFAULT '',
			sectors TEXT[] NOT NULL DEFAULT '{}',
			stages TEXT[] NOT NULL DEFAULT '{}',
			eligibility_criteria JSONB NOT NULL DEFAULT '{}',
			url TEXT NOT NULL DEFAULT '',
			contact_email TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			questions JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (name, provider)
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			startup_id UUID NOT NULL REFERENCES startups(id) ON DELETE CASCADE,
			file_name TEXT NOT NULL,
			file_type TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			storage_path TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			metadata JSONB,
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS documents_startup_idx ON documents (startup_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			startup_id UUID NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (document_id, chunk_index)
		)`, embeddingDimension),
		`CREATE INDEX IF NOT EXISTS document_chunks_startup_idx ON document_chunks (startup_id)`,
		`CREATE INDEX IF NOT EXISTS document_chunks_embedding_idx
			ON document_chunks USING hnsw (embedding vector_cosine_ops)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			startup_id UUID NOT NULL REFERENCES startups(id) ON DELETE CASCADE,
			grant_id UUID NOT NULL REFERENCES grants(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (startup_id, grant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS application_answers (
			application_id UUID NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			question_id TEXT NOT NULL,
			generated_answer TEXT NOT NULL DEFAULT '',
			edited_answer TEXT,
			sources TEXT[] NOT NULL DEFAULT '{}',
			is_edited BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (application_id, question_id)
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			startup_id UUID NOT NULL REFERENCES startups(id) ON DELETE CASCADE,
			grant_id UUID NOT NULL REFERENCES grants(id) ON DELETE CASCADE,
			notify_deadline BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (startup_id, grant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			startup_id UUID NOT NULL REFERENCES startups(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			grant_id UUID,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
}
