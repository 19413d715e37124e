package enrich

import (
	"context"
	"fmt"

	"nlp-pipeline/internal/dataset"
	"nlp-pipeline/internal/models"
	"nlp-pipeline/internal/nlp"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the slice of the document collection the enricher needs. The
// concrete implementation lives in internal/mongodb; tests inject an
// in-memory one.
type Store interface {
	ForEachPost(ctx context.Context, batch int32, limit int64, fn func(*models.Post) error) error
	SetAnnotations(ctx context.Context, id primitive.ObjectID, ann *models.Annotation) error
	UpsertAnnotated(ctx context.Context, p *models.Post) error
}

// Options control an enricher run.
type Options struct {
	// Force recomputes annotations even when all four fields are present.
	Force bool
	// Sample limits the run to the first N documents; zero means all.
	Sample int64
	// Batch is the collection cursor batch size.
	Batch int32
	// UpsertBack writes file-sourced results back into the collection.
	UpsertBack bool
}

const defaultBatch = 500

// Enricher annotates posts with language and sentiment, skipping posts that
// already carry current annotations.
type Enricher struct {
	store    Store
	analyzer *nlp.Analyzer
	logger   *zap.Logger
}

// NewEnricher creates a new enricher. store may be nil when enriching from a
// file without write-back.
func NewEnricher(store Store, logger *zap.Logger) *Enricher {
	return &Enricher{
		store:    store,
		analyzer: nlp.NewAnalyzer(),
		logger:   logger,
	}
}

// EnrichCollection scans the document collection and writes annotations back,
// one update per document, limited to the four annotation fields.
func (e *Enricher) EnrichCollection(ctx context.Context, opts Options) (*models.EnrichReport, error) {
	if e.store == nil {
		return nil, fmt.Errorf("no document collection configured")
	}
	batch := opts.Batch
	if batch <= 0 {
		batch = defaultBatch
	}

	report := &models.EnrichReport{}
	err := e.store.ForEachPost(ctx, batch, opts.Sample, func(p *models.Post) error {
		report.Scanned++
		if !opts.Force && p.Enriched() {
			report.Skipped++
			return nil
		}

		ann := e.analyzer.Annotate(p.Text)
		if err := e.store.SetAnnotations(ctx, p.OID, ann); err != nil {
			e.logger.Warn("Failed to update annotations",
				zap.Int64("id_post", p.IDPost),
				zap.Error(err))
			report.Failed++
			return nil
		}
		report.Updated++
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("collection scan failed: %w", err)
	}

	e.logger.Info("Enrichment complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// EnrichFile annotates posts from the line-oriented export. With UpsertBack
// set, each annotated post is also upserted into the collection by id_post.
func (e *Enricher) EnrichFile(ctx context.Context, path string, opts Options) ([]*models.Post, *models.EnrichReport, error) {
	if opts.UpsertBack && e.store == nil {
		return nil, nil, fmt.Errorf("write-back requested but no document collection configured")
	}

	posts, err := dataset.ReadJSONL(path)
	if err != nil {
		return nil, nil, err
	}
	if opts.Sample > 0 && int64(len(posts)) > opts.Sample {
		posts = posts[:opts.Sample]
	}

	report := &models.EnrichReport{}
	for _, p := range posts {
		report.Scanned++
		if !opts.Force && p.Enriched() {
			report.Skipped++
			continue
		}

		p.SetAnnotation(e.analyzer.Annotate(p.Text))

		if opts.UpsertBack {
			if err := e.store.UpsertAnnotated(ctx, p); err != nil {
				e.logger.Warn("Failed to upsert annotated post",
					zap.Int64("id_post", p.IDPost),
					zap.Error(err))
				report.Failed++
				continue
			}
		}
		report.Updated++
	}

	e.logger.Info("Enrichment complete",
		zap.String("source", path),
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return posts, report, nil
}
