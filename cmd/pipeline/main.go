package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nlp-pipeline/internal/config"
	"nlp-pipeline/internal/dataset"
	"nlp-pipeline/internal/enrich"
	"nlp-pipeline/internal/handler"
	"nlp-pipeline/internal/mongodb"
	"nlp-pipeline/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	app := &cli.App{
		Name:  "pipeline",
		Usage: "Batch NLP pipeline: CSV -> MongoDB -> enrichment -> Elasticsearch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "configs/config.yml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "preprocess",
				Usage: "Clean and deduplicate the raw dataset, deriving stable ids",
				Action: func(c *cli.Context) error {
					return runPreprocess(c, logger)
				},
			},
			{
				Name:  "load",
				Usage: "Upsert the clean dataset into the document collection",
				Action: func(c *cli.Context) error {
					return runLoad(c, logger)
				},
			},
			{
				Name:  "enrich",
				Usage: "Annotate documents with language and sentiment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source to process: 'collection' or 'file'",
						Value: "collection",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Recompute annotations even when already present",
					},
					&cli.BoolFlag{
						Name:  "upsert",
						Usage: "When source is 'file': upsert results into the collection",
					},
					&cli.Int64Flag{
						Name:  "sample",
						Usage: "Process only N documents (for testing)",
					},
					&cli.IntFlag{
						Name:  "batch",
						Usage: "Collection cursor batch size",
						Value: 500,
					},
				},
				Action: func(c *cli.Context) error {
					return runEnrich(c, logger)
				},
			},
			{
				Name:  "index",
				Usage: "Project annotated documents into the search index",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch",
						Usage: "Collection cursor batch size",
						Value: 500,
					},
				},
				Action: func(c *cli.Context) error {
					return runIndex(c, logger)
				},
			},
			{
				Name:  "serve",
				Usage: "Run the analysis and status HTTP API",
				Action: func(c *cli.Context) error {
					return runServe(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal("Pipeline failed", zap.Error(err))
	}
}

func runPreprocess(c *cli.Context, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	normalizer := dataset.NewNormalizer(logger)
	_, err = normalizer.Run(cfg.Data.RawCSV, cfg.Data.CleanCSV, cfg.Data.CleanJSONL)
	return err
}

func runLoad(c *cli.Context, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	posts, err := dataset.ReadJSONL(cfg.Data.CleanJSONL)
	if err != nil {
		return fmt.Errorf("run 'pipeline preprocess' first: %w", err)
	}

	ctx := context.Background()
	store, err := mongodb.NewStore(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.RemoveDuplicates(ctx)
	if err != nil {
		return err
	}
	if err := store.EnsureUniqueIndex(ctx); err != nil {
		return err
	}

	report, err := store.UpsertPosts(ctx, posts)
	if err != nil {
		return err
	}
	report.DuplicatesRemoved = removed

	logger.Info("Load complete",
		zap.Int64("duplicates_removed", report.DuplicatesRemoved),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped))
	return nil
}

func runEnrich(c *cli.Context, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	opts := enrich.Options{
		Force:      c.Bool("force"),
		Sample:     c.Int64("sample"),
		Batch:      int32(c.Int("batch")),
		UpsertBack: c.Bool("upsert"),
	}

	ctx := context.Background()
	source := c.String("source")

	var store enrich.Store
	if source == "collection" || opts.UpsertBack {
		s, err := mongodb.NewStore(ctx, cfg.Mongo, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	enricher := enrich.NewEnricher(store, logger)
	switch source {
	case "collection":
		_, err = enricher.EnrichCollection(ctx, opts)
	case "file":
		_, _, err = enricher.EnrichFile(ctx, cfg.Data.CleanJSONL, opts)
	default:
		return fmt.Errorf("unknown source %q (want 'collection' or 'file')", source)
	}
	return err
}

func runIndex(c *cli.Context, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := mongodb.NewStore(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	indexer, err := search.NewIndexer(cfg.Elastic, logger)
	if err != nil {
		return err
	}
	if err := indexer.EnsureIndex(ctx); err != nil {
		return err
	}

	_, err = indexer.BulkIndex(ctx, store, int32(c.Int("batch")))
	return err
}

func runServe(c *cli.Context, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	ctx := context.Background()

	// The analysis endpoint works standalone; the status endpoint degrades
	// when a backend is unreachable.
	var posts handler.CollectionCounter
	store, err := mongodb.NewStore(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Warn("Document collection unavailable", zap.Error(err))
	} else {
		defer store.Close()
		posts = store
	}

	var index handler.IndexCounter
	indexer, err := search.NewIndexer(cfg.Elastic, logger)
	if err != nil {
		logger.Warn("Search index unavailable", zap.Error(err))
	} else {
		index = indexer
	}

	apiHandler := handler.NewHandler(posts, index, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	apiHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API is running", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
