package search

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"nlp-pipeline/internal/dataset"
	"nlp-pipeline/internal/enrich"
	"nlp-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// pipeStore is an in-memory stand-in for the document collection, usable both
// as an enrichment target and as a projection source.
type pipeStore struct {
	posts []*models.Post
}

func (s *pipeStore) ForEachPost(_ context.Context, _ int32, limit int64, fn func(*models.Post) error) error {
	for i, p := range s.posts {
		if limit > 0 && int64(i) >= limit {
			break
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *pipeStore) SetAnnotations(_ context.Context, id primitive.ObjectID, ann *models.Annotation) error {
	for _, p := range s.posts {
		if p.OID == id {
			p.SetAnnotation(ann)
		}
	}
	return nil
}

func (s *pipeStore) UpsertAnnotated(_ context.Context, p *models.Post) error {
	for i, existing := range s.posts {
		if existing.IDPost == p.IDPost {
			s.posts[i] = p
			return nil
		}
	}
	s.posts = append(s.posts, p)
	return nil
}

func (s *pipeStore) ForEachRaw(_ context.Context, _ int32, fn func(bson.M) error) error {
	for _, p := range s.posts {
		data, err := bson.Marshal(p)
		if err != nil {
			return err
		}
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

func TestPipelineEndToEnd(t *testing.T) {
	raw := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(raw, []byte(
		"text,type,label\n"+
			"Check http://x.co now,Harassment,Offensive\n"+
			"Check now,harassment,offensive\n"), 0o644))

	// Normalize: both rows clean to "Check now" and collapse to one record.
	normalizer := dataset.NewNormalizer(zap.NewNop())
	posts, report, err := normalizer.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, "Check now", posts[0].Text)
	assert.Equal(t, "harassment", posts[0].Type)

	// Load: the collection converges to exactly one document, and loading
	// twice changes nothing.
	store := &pipeStore{}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		for _, p := range posts {
			require.NoError(t, store.UpsertAnnotated(ctx, p))
		}
	}
	require.Len(t, store.posts, 1)

	store.posts[0].OID = primitive.NewObjectID()

	// Enrich: the document gains all four annotation fields.
	enricher := enrich.NewEnricher(store, zap.NewNop())
	enrichReport, err := enricher.EnrichCollection(ctx, enrich.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, enrichReport.Updated)

	doc := store.posts[0]
	require.True(t, doc.Enriched())
	assert.Contains(t, []string{"positive", "neutral", "negative"}, doc.Sentiment)

	// Project: exactly one indexed document with the cleaned text and a
	// numeric score.
	var indexed []*Document
	var ids []string
	require.NoError(t, store.ForEachRaw(ctx, 500, func(raw bson.M) error {
		id, projected := Project(raw)
		ids = append(ids, id)
		indexed = append(indexed, projected)
		return nil
	}))

	require.Len(t, indexed, 1)
	assert.Equal(t, "Check now", indexed[0].Text)
	assert.Equal(t, strconv.FormatInt(doc.IDPost, 10), ids[0])
	assert.Equal(t, doc.SentimentScores.Compound, indexed[0].Score)
	assert.Equal(t, "harassment", indexed[0].Type)
}
