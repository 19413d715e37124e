package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"nlp-pipeline/internal/models"

	"go.uber.org/zap"
)

// Normalizer turns the raw tabular dataset into a deduplicated set of posts
// with stable ids.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// columns maps the recognized header names (case-insensitive) to field slots.
type columns struct {
	text   int
	typ    int
	label  int
	date   int
	source int
}

func detectColumns(header []string) (columns, error) {
	cols := columns{text: -1, typ: -1, label: -1, date: -1, source: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text", "texte":
			cols.text = i
		case "type", "types":
			cols.typ = i
		case "label":
			cols.label = i
		case "date":
			cols.date = i
		case "source":
			cols.source = i
		}
	}
	if cols.text < 0 {
		return cols, fmt.Errorf("required text column missing, found: %v", header)
	}
	return cols, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Run reads the raw CSV, cleans and deduplicates it, and writes the clean
// CSV and JSONL exports. Rows without usable text are skipped and counted.
func (n *Normalizer) Run(rawPath, csvPath, jsonlPath string) (*models.PreprocessReport, error) {
	posts, report, err := n.Normalize(rawPath)
	if err != nil {
		return nil, err
	}

	if err := WriteCleanCSV(csvPath, posts); err != nil {
		return nil, fmt.Errorf("failed to write clean csv: %w", err)
	}
	if err := WriteJSONL(jsonlPath, posts); err != nil {
		return nil, fmt.Errorf("failed to write jsonl export: %w", err)
	}

	n.logger.Info("Preprocessing complete",
		zap.Int("rows_read", report.RowsRead),
		zap.Int("malformed", report.Malformed),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("kept", report.Kept))

	return report, nil
}

// Normalize reads and cleans the raw CSV without writing exports. Two rows
// whose cleaned text is byte-identical are duplicates; the first occurrence
// wins.
func (n *Normalizer) Normalize(rawPath string) ([]*models.Post, *models.PreprocessReport, error) {
	file, err := os.Open(rawPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open raw dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols, err := detectColumns(header)
	if err != nil {
		return nil, nil, err
	}

	report := &models.PreprocessReport{}
	seen := make(map[string]struct{})
	var posts []*models.Post

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Malformed++
			continue
		}
		report.RowsRead++

		text := CleanText(field(row, cols.text))
		if text == "" {
			report.Malformed++
			continue
		}
		if _, ok := seen[text]; ok {
			report.Duplicates++
			continue
		}
		seen[text] = struct{}{}

		posts = append(posts, &models.Post{
			IDPost: DeriveID(text),
			Text:   text,
			Type:   NormalizeType(field(row, cols.typ)),
			Label:  NormalizeLabel(field(row, cols.label)),
			Date:   strings.TrimSpace(field(row, cols.date)),
			Source: strings.TrimSpace(field(row, cols.source)),
		})
	}

	report.Kept = len(posts)
	return posts, report, nil
}
