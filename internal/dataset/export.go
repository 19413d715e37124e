package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"nlp-pipeline/internal/models"
)

// WriteCleanCSV writes the random-access tabular export of the clean dataset.
func WriteCleanCSV(path string, posts []*models.Post) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"id_post", "text", "type", "label", "date", "source"}); err != nil {
		return err
	}
	for _, p := range posts {
		row := []string{strconv.FormatInt(p.IDPost, 10), p.Text, p.Type, p.Label, p.Date, p.Source}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSONL writes the line-oriented export, one post per line.
func WriteJSONL(path string, posts []*models.Post) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, p := range posts {
		if err := encoder.Encode(p); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// ReadJSONL reads a line-oriented export produced by WriteJSONL.
func ReadJSONL(path string) ([]*models.Post, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jsonl export: %w", err)
	}
	defer file.Close()

	var posts []*models.Post
	decoder := json.NewDecoder(file)
	for decoder.More() {
		var p models.Post
		if err := decoder.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode jsonl record %d: %w", len(posts)+1, err)
		}
		posts = append(posts, &p)
	}
	return posts, nil
}
