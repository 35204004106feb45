package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var logger = logger_i.NewLogger("Qdrant")

type Options struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
	Dimension  int
}

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
}

var _ vectorDB.ChunkRepository = (*ClientHolder)(nil)

// NewQdrantStore connects and makes sure the chunk collection and its
// startup_id payload index exist.
func NewQdrantStore(ctx context.Context, opts Options) (*ClientHolder, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		APIKey:   opts.APIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err := createCollection(ctx, client, opts.Collection, uint64(opts.Dimension)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not create collection %s: %w", opts.Collection, err)
	}
	logger.Info("Qdrant collection ready", "collection", opts.Collection)
	return &ClientHolder{QObj: client, collection: opts.Collection}, nil
}

func (db *ClientHolder) Close() error {
	logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) ReplaceDocumentChunks(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk) error {
	if err := db.DeleteDocumentChunks(ctx, doc.StartupId, doc.Id); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         buildPoints(doc, chunks),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant upsert failed: %w", commonModels.ErrPersistence, err)
	}
	return nil
}

func (db *ClientHolder) DeleteDocumentChunks(ctx context.Context, startupId string, documentId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("startup_id", startupId),
				qdrant.NewMatch("document_id", documentId),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant delete failed: %w", commonModels.ErrPersistence, err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, startupId string, vector []float32, minSimilarity float64, limit int) ([]commonModels.RetrievedChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("startup_id", startupId)},
		},
		ScoreThreshold: qdrant.PtrOf(float32(minSimilarity)),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.FromContext(ctx).Error("Error querying Qdrant", "error", err)
		return nil, fmt.Errorf("%w: qdrant query failed: %w", commonModels.ErrPersistence, err)
	}

	hits := make([]commonModels.RetrievedChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, commonModels.RetrievedChunk{
			ChunkId:         hit.Payload["chunk_id"].GetStringValue(),
			ChunkContent:    hit.Payload["content"].GetStringValue(),
			DocumentId:      hit.Payload["document_id"].GetStringValue(),
			DocumentName:    hit.Payload["doc_name"].GetStringValue(),
			SimilarityScore: float64(hit.Score),
		})
	}
	return hits, nil
}

func buildPoints(doc commonModels.Document, chunks []commonModels.DocChunk) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		id := chunk.Id
		if id == "" {
			id = uuid.NewString()
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":    id,
				"content":     chunk.Content,
				"startup_id":  doc.StartupId,
				"document_id": doc.Id,
				"doc_name":    doc.FileName,
				"chunk_index": i,
			}),
		}
	}
	return points
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      "startup_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}
