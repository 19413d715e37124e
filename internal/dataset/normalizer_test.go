package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRawCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o644))
	return path
}

func TestNormalizeDeduplicatesOnCleanedText(t *testing.T) {
	// Both rows clean down to "Check now"; the first occurrence wins.
	raw := writeRawCSV(t,
		"Text,Types,Label\n"+
			"Check http://x.co now,Harassment,Offensive\n"+
			"Check now,harassment,offensive\n"+
			"Something else,Religion,Not Offensive\n")

	n := NewNormalizer(zap.NewNop())
	posts, report, err := n.Normalize(raw)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, 3, report.RowsRead)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.Kept)

	assert.Equal(t, "Check now", posts[0].Text)
	assert.Equal(t, "harassment", posts[0].Type)
	assert.Equal(t, "offensive", posts[0].Label)
	assert.Equal(t, DeriveID("Check now"), posts[0].IDPost)

	assert.Equal(t, "Something else", posts[1].Text)
	assert.Equal(t, "religion", posts[1].Type)
	assert.Equal(t, "not-offensive", posts[1].Label)
}

func TestNormalizeSkipsMalformedRows(t *testing.T) {
	raw := writeRawCSV(t,
		"text,type,label\n"+
			",age,x\n"+
			"http://only-a-url.example,age,x\n"+
			"real content,age,x\n")

	n := NewNormalizer(zap.NewNop())
	posts, report, err := n.Normalize(raw)
	require.NoError(t, err)

	assert.Len(t, posts, 1)
	assert.Equal(t, 2, report.Malformed)
	assert.Equal(t, 1, report.Kept)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := writeRawCSV(t,
		"text,type,label\n"+
			"first post about things,age,a\n"+
			"second post about stuff,gender,b\n")

	n := NewNormalizer(zap.NewNop())
	first, _, err := n.Normalize(raw)
	require.NoError(t, err)
	second, _, err := n.Normalize(raw)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].IDPost, second[i].IDPost)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestNormalizeMissingTextColumn(t *testing.T) {
	raw := writeRawCSV(t, "foo,bar\n1,2\n")

	n := NewNormalizer(zap.NewNop())
	_, _, err := n.Normalize(raw)
	assert.Error(t, err)
}

func TestRunWritesBothExports(t *testing.T) {
	raw := writeRawCSV(t,
		"text,type,label\n"+
			"alpha beta,age,a\n"+
			"gamma delta,gender,b\n")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "clean.csv")
	jsonlPath := filepath.Join(dir, "clean.jsonl")

	n := NewNormalizer(zap.NewNop())
	report, err := n.Run(raw, csvPath, jsonlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Kept)

	posts, err := ReadJSONL(jsonlPath)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "alpha beta", posts[0].Text)
	assert.Equal(t, DeriveID("alpha beta"), posts[0].IDPost)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id_post,text,type,label,date,source")
	assert.Contains(t, string(data), "gamma delta")
}
