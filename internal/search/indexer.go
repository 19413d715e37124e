package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"nlp-pipeline/internal/config"
	"nlp-pipeline/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// mapping is the explicit index schema. The date field tolerates legacy
// free-form values instead of rejecting whole documents.
const mapping = `{
  "mappings": {
    "properties": {
      "id_post":   {"type": "long"},
      "text":      {"type": "text"},
      "type":      {"type": "keyword"},
      "label":     {"type": "keyword"},
      "language":  {"type": "keyword"},
      "sentiment": {"type": "keyword"},
      "score":     {"type": "float"},
      "date":      {"type": "date", "ignore_malformed": true},
      "source":    {"type": "keyword"}
    }
  }
}`

// Source streams stored documents into the projector.
type Source interface {
	ForEachRaw(ctx context.Context, batch int32, fn func(bson.M) error) error
}

// Indexer projects stored documents into the search index.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewIndexer connects to Elasticsearch and verifies it is reachable.
func NewIndexer(cfg config.ElasticConfig, logger *zap.Logger) (*Indexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch not reachable at %v: %w", cfg.Addresses, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch not reachable at %v: %s", cfg.Addresses, res.String())
	}

	return &Indexer{es: es, index: cfg.Index, logger: logger}, nil
}

// EnsureIndex creates the index with its mapping if it does not exist. A
// concurrent creation racing this one is treated as success.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index},
		i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %q: %w", i.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithBody(strings.NewReader(mapping)),
		i.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create index %q: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("failed to create index %q: %s", i.index, string(body))
	}

	i.logger.Info("Created index", zap.String("index", i.index))
	return nil
}

// BulkIndex projects every document from the source and bulk-upserts it into
// the index. Item failures are reported individually; the rest of the batch
// stays committed.
func (i *Indexer) BulkIndex(ctx context.Context, source Source, batch int32) (*models.IndexReport, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        i.es,
		Index:         i.index,
		NumWorkers:    1,
		FlushInterval: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	report := &models.IndexReport{}
	err = source.ForEachRaw(ctx, batch, func(doc bson.M) error {
		docID, projected := Project(doc)
		payload, err := json.Marshal(projected)
		if err != nil {
			i.logger.Warn("Failed to encode document", zap.String("doc_id", docID), zap.Error(err))
			report.FailedIDs = append(report.FailedIDs, docID)
			return nil
		}

		return bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: docID,
			Body:       bytes.NewReader(payload),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					i.logger.Warn("Bulk item failed", zap.String("doc_id", item.DocumentID), zap.Error(err))
				} else {
					i.logger.Warn("Bulk item rejected",
						zap.String("doc_id", item.DocumentID),
						zap.String("reason", res.Error.Reason))
				}
				report.FailedIDs = append(report.FailedIDs, item.DocumentID)
			},
		})
	})

	closeErr := bi.Close(ctx)
	stats := bi.Stats()
	report.Indexed = int64(stats.NumFlushed)
	report.Failed = int64(len(report.FailedIDs))

	if err != nil {
		return report, fmt.Errorf("bulk indexing aborted: %w", err)
	}
	if closeErr != nil {
		return report, fmt.Errorf("bulk indexer flush failed: %w", closeErr)
	}

	i.logger.Info("Bulk indexing complete",
		zap.String("index", i.index),
		zap.Int64("indexed", report.Indexed),
		zap.Int64("failed", report.Failed))
	return report, nil
}

// Count returns the number of documents in the index.
func (i *Indexer) Count(ctx context.Context) (int64, error) {
	res, err := i.es.Count(
		i.es.Count.WithIndex(i.index),
		i.es.Count.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to count index %q: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("failed to count index %q: %s", i.index, res.String())
	}

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Count, nil
}
