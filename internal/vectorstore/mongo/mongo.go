package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docqa/internal/domain"
)

// Store keeps one MongoDB document per embedded chunk. Upserts filter on
// the full record identity, so re-ingesting the same chunk replaces its
// embedding instead of duplicating the document.
type Store struct {
	client *mongo.Client
	col    *mongo.Collection
}

func New(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return &Store{
		client: client,
		col:    client.Database(database).Collection(collection),
	}, nil
}

type doc struct {
	Namespace string    `bson:"namespace"`
	Filename  string    `bson:"filename"`
	Text      string    `bson:"text"`
	Embedding []float64 `bson:"embedding"`
}

func (s *Store) Upsert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	filter := bson.M{
		"namespace": rec.Namespace,
		"filename":  rec.SourceID,
		"text":      rec.Text,
	}
	update := bson.M{"$set": doc{
		Namespace: rec.Namespace,
		Filename:  rec.SourceID,
		Text:      rec.Text,
		Embedding: rec.Embedding,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored doc
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return domain.Record{}, fmt.Errorf("upserting record: %w", err)
	}
	return domain.Record{
		Namespace: stored.Namespace,
		SourceID:  stored.Filename,
		Text:      stored.Text,
		Embedding: stored.Embedding,
	}, nil
}

func (s *Store) FetchAll(ctx context.Context, namespace string) ([]domain.Record, error) {
	cur, err := s.col.Find(ctx, bson.M{"namespace": namespace})
	if err != nil {
		return nil, fmt.Errorf("listing namespace %q: %w", namespace, err)
	}
	var docs []doc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding namespace %q: %w", namespace, err)
	}
	recs := make([]domain.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, domain.Record{
			Namespace: d.Namespace,
			SourceID:  d.Filename,
			Text:      d.Text,
			Embedding: d.Embedding,
		})
	}
	return recs, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
