package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// contentPayloadKey is the payload field used to round-trip document text,
// since Qdrant points only carry vectors + a JSON payload.
const contentPayloadKey = "__content__"

// QdrantBackend is the alternate/local VectorBackend: it can run against a
// self-hosted Qdrant instance with no external SaaS dependency, unlike
// Pinecone.
type QdrantBackend struct {
	client           *qdrant.Client
	embed            EmbeddingFunc
	collection       string
	dimension        uint64
	initializeSchema bool
}

// NewQdrantBackend wraps an already-configured Qdrant client.
// When initializeSchema is true, every Upsert creates the collection if it
// does not exist yet; Query never creates it.
func NewQdrantBackend(client *qdrant.Client, embed EmbeddingFunc, collection string, dimension uint64, initializeSchema bool) *QdrantBackend {
	return &QdrantBackend{client: client, embed: embed, collection: collection, dimension: dimension, initializeSchema: initializeSchema}
}

func (b *QdrantBackend) Name() string { return "qdrant" }

func (b *QdrantBackend) ensureCollection(ctx context.Context) error {
	if !b.initializeSchema {
		return nil
	}
	exists, err := b.client.CollectionExists(ctx, b.collection)
	if err != nil {
		return fmt.Errorf("qdrant: check collection: %w", err)
	}
	if exists {
		return nil
	}
	return b.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: b.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     b.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (b *QdrantBackend) Query(ctx context.Context, queryText string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error) {
	vector, err := b.embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("qdrant: embed query: %w", err)
	}

	req := &qdrant.QueryPoints{
		CollectionName: b.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          ptrUint64(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	points, err := b.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant: query: %w", err)
	}

	docs := make([]RetrievedDocument, 0, len(points))
	for _, point := range points {
		meta := map[string]any{}
		content := ""
		for k, v := range point.Payload {
			val := qdrantValueToAny(v)
			if k == contentPayloadKey {
				if s, ok := val.(string); ok {
					content = s
					continue
				}
			}
			meta[k] = val
		}
		docs = append(docs, RetrievedDocument{
			ID:         pointIDString(point.Id),
			Content:    content,
			Score:      float64(point.Score),
			Metadata:   meta,
			SearchType: SearchVector,
		})
	}
	return docs, nil
}

func (b *QdrantBackend) Upsert(ctx context.Context, docs []RetrievedDocument, namespace string) error {
	if err := b.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		vector, err := b.embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("qdrant: embed document %s: %w", id, err)
		}

		payload := map[string]*qdrant.Value{contentPayloadKey: qdrant.NewValueString(doc.Content)}
		for k, v := range doc.Metadata {
			if s, ok := v.(string); ok {
				payload[k] = qdrant.NewValueString(s)
			}
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		})
	}

	_, err := b.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: b.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	return nil
}

func (b *QdrantBackend) Delete(ctx context.Context, ids []string, namespace string) error {
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewID(id))
	}
	_, err := b.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: b.collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete %d points: %w", len(ids), err)
	}
	return nil
}

func ptrUint64(v uint64) *uint64 { return &v }

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	default:
		return ""
	}
}

func qdrantValueToAny(value *qdrant.Value) any {
	if value == nil {
		return nil
	}
	switch kind := value.Kind.(type) {
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
