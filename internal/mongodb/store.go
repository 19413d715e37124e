package mongodb

import (
	"context"
	"fmt"
	"time"

	"nlp-pipeline/internal/config"
	"nlp-pipeline/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store is the keyed document collection holding the posts. id_post is the
// primary key; EnsureUniqueIndex enforces it at the storage layer.
type Store struct {
	client *mongo.Client
	posts  *mongo.Collection
	logger *zap.Logger
}

// NewStore connects to MongoDB and pings it before returning.
func NewStore(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB at %s: %w", cfg.URI, err)
	}

	return &Store{
		client: client,
		posts:  client.Database(cfg.Database).Collection(cfg.Collection),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// RemoveDuplicates deletes documents sharing an id_post, keeping the first of
// each group, so the unique index can be created even if earlier runs left
// violations behind. Returns the number of documents removed.
func (s *Store) RemoveDuplicates(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$id_post"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
		}}},
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$ne", Value: nil}}},
			{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}},
		}}},
	}

	cursor, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to detect id_post duplicates: %w", err)
	}
	defer cursor.Close(ctx)

	var removed int64
	for cursor.Next(ctx) {
		var group struct {
			IDs []primitive.ObjectID `bson:"ids"`
		}
		if err := cursor.Decode(&group); err != nil {
			return removed, err
		}
		if len(group.IDs) < 2 {
			continue
		}
		res, err := s.posts.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": group.IDs[1:]}})
		if err != nil {
			return removed, fmt.Errorf("failed to remove id_post duplicates: %w", err)
		}
		removed += res.DeletedCount
	}
	if err := cursor.Err(); err != nil {
		return removed, err
	}

	if removed > 0 {
		s.logger.Info("Removed duplicate documents", zap.Int64("removed", removed))
	}
	return removed, nil
}

// EnsureUniqueIndex creates the unique index on id_post. Creating an index
// that already exists with the same options is a no-op.
func (s *Store) EnsureUniqueIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "id_post", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.posts.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create unique index on id_post: %w", err)
	}
	return nil
}

// canonicalSet builds the $set document for a loader upsert. Only canonical
// fields are written, so annotations already present on a matched document
// survive the reload.
func canonicalSet(p *models.Post) bson.M {
	set := bson.M{
		"text":  p.Text,
		"type":  p.Type,
		"label": p.Label,
	}
	if p.Date != "" {
		set["date"] = p.Date
	}
	if p.Source != "" {
		set["source"] = p.Source
	}
	return set
}

// UpsertPosts converges the collection to the given post set, keyed by
// id_post. Running it any number of times with the same input leaves the
// collection in the same state.
func (s *Store) UpsertPosts(ctx context.Context, posts []*models.Post) (*models.LoadReport, error) {
	report := &models.LoadReport{}
	opts := options.Update().SetUpsert(true)

	for _, p := range posts {
		res, err := s.posts.UpdateOne(ctx,
			bson.M{"id_post": p.IDPost},
			bson.M{"$set": canonicalSet(p)},
			opts)
		if err != nil {
			return report, fmt.Errorf("failed to upsert id_post=%d: %w", p.IDPost, err)
		}
		switch {
		case res.UpsertedCount > 0:
			report.Inserted++
		case res.ModifiedCount > 0:
			report.Updated++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// ForEachPost streams posts through fn. A zero limit means no limit.
func (s *Store) ForEachPost(ctx context.Context, batch int32, limit int64, fn func(*models.Post) error) error {
	opts := options.Find().SetBatchSize(batch)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to scan posts collection: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.Post
		if err := cursor.Decode(&p); err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// ForEachRaw streams documents as raw maps, preserving legacy field names
// that the typed model would drop. The projector uses this to reconcile
// alternate text field names.
func (s *Store) ForEachRaw(ctx context.Context, batch int32, fn func(bson.M) error) error {
	cursor, err := s.posts.Find(ctx, bson.M{}, options.Find().SetBatchSize(batch))
	if err != nil {
		return fmt.Errorf("failed to scan posts collection: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// SetAnnotations writes the four annotation fields on one document. Canonical
// fields are never touched here.
func (s *Store) SetAnnotations(ctx context.Context, id primitive.ObjectID, ann *models.Annotation) error {
	_, err := s.posts.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"language":         ann.Language,
		"sentiment":        ann.Sentiment,
		"sentiment_scores": ann.Scores,
		"sentiment_tokens": ann.Tokens,
	}})
	return err
}

// UpsertAnnotated writes a fully annotated post back by id_post. Used when
// enriching from the file export with write-back enabled.
func (s *Store) UpsertAnnotated(ctx context.Context, p *models.Post) error {
	set := canonicalSet(p)
	set["language"] = p.Language
	set["sentiment"] = p.Sentiment
	set["sentiment_scores"] = p.SentimentScores
	set["sentiment_tokens"] = p.SentimentTokens

	_, err := s.posts.UpdateOne(ctx,
		bson.M{"id_post": p.IDPost},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	return err
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.posts.CountDocuments(ctx, bson.M{})
}

// EnrichedCount returns the number of documents carrying all four annotation
// fields.
func (s *Store) EnrichedCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.posts.CountDocuments(ctx, bson.M{
		"language":         bson.M{"$exists": true},
		"sentiment":        bson.M{"$exists": true},
		"sentiment_scores": bson.M{"$exists": true},
		"sentiment_tokens": bson.M{"$exists": true},
	})
}
