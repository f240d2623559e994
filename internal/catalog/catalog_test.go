package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hh-swiper/internal/swipe"
)

func TestDemoJobs(t *testing.T) {
	items, err := Demo(swipe.ContentJobs)
	require.NoError(t, err)
	require.Len(t, items, 8)

	first := items[0]
	assert.Equal(t, "job1", first.ID)
	assert.Equal(t, swipe.KindJob, first.Kind)
	assert.Equal(t, "Senior Frontend Developer", first.Title)
	assert.Equal(t, "Innovatech Solutions", first.Company)
	assert.Equal(t, []string{"React", "TypeScript", "Next.js", "GraphQL"}, first.Tags)
	assert.NotEmpty(t, first.Summary)
	assert.Contains(t, first.Details, "Unlimited PTO")
	assert.Equal(t, "Full-time", first.Extra["type"])
}

func TestDemoCandidates(t *testing.T) {
	items, err := Demo(swipe.ContentCandidates)
	require.NoError(t, err)
	require.Len(t, items, 8)

	for _, item := range items {
		assert.Equal(t, swipe.KindCandidate, item.Kind, item.ID)
		assert.NotEmpty(t, item.Name, item.ID)
		assert.NotEmpty(t, item.Tags, item.ID)
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{"items":[
		{"id": 101, "title": "Go Developer", "skills": ["Go"], "requirements": ["gRPC"], "remote": true},
		{"id": "x2", "kind": "candidate", "name": "Ann"}
	]}`)

	items, err := Parse(data, ".JSON", swipe.KindJob)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "101", items[0].ID)
	assert.Equal(t, swipe.KindJob, items[0].Kind)
	assert.ElementsMatch(t, []string{"Go", "gRPC"}, items[0].Tags)
	assert.Equal(t, true, items[0].Extra["remote"])

	assert.Equal(t, swipe.KindCandidate, items[1].Kind)
	assert.Nil(t, items[1].Extra)
}

func TestParseNumericIDsMatchAcrossFormats(t *testing.T) {
	jsonItems, err := Parse([]byte(`{"items":[
		{"id": 98765432, "employer_id": 1234567890},
		{"id": 12345678901234567},
		{"id": 12345678901234568}
	]}`), ".json", swipe.KindJob)
	require.NoError(t, err)

	yamlItems, err := Parse([]byte("items:\n"+
		"  - id: 98765432\n    employer_id: 1234567890\n"+
		"  - id: 12345678901234567\n"+
		"  - id: 12345678901234568\n"), ".yaml", swipe.KindJob)
	require.NoError(t, err)

	want := []string{"98765432", "12345678901234567", "12345678901234568"}
	for idx, id := range want {
		assert.Equal(t, id, jsonItems[idx].ID)
		assert.Equal(t, id, yamlItems[idx].ID)
	}
	assert.Equal(t, yamlItems[0].Extra, jsonItems[0].Extra)
	assert.Equal(t, 1234567890, jsonItems[0].Extra["employer_id"])
}

func TestDecodeCanonicalKeyWinsOverAlias(t *testing.T) {
	record := map[string]any{
		"id":            "x",
		"summary":       "S",
		"description":   "D",
		"url":           "https://example.com/own",
		"alternate_url": "https://example.com/alt",
		"tags":          []any{"Go"},
		"skills":        []any{"SQL"},
		"requirements":  []any{"gRPC"},
	}

	for i := 0; i < 50; i++ {
		item, err := Decode(record)
		require.NoError(t, err)
		assert.Equal(t, "S", item.Summary)
		assert.Equal(t, "https://example.com/own", item.URL)
		assert.Equal(t, []string{"gRPC", "SQL", "Go"}, item.Tags)
	}
}

func TestParseRejectsBadPools(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "missing id",
			data:    "items:\n  - title: No id\n",
			wantErr: ErrEmptyID,
		},
		{
			name:    "repeated id",
			data:    "items:\n  - id: a\n  - id: a\n",
			wantErr: ErrDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".yaml", swipe.KindJob)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte("items:\n  - id: a\n    kind: robot\n"), ".yaml", swipe.KindJob)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	_, err := Parse([]byte("items: [\n"), ".yml", swipe.KindJob)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - id: c1\n    name: Bob\n    history: [Intern, Engineer]\n"), 0o600))

	items, err := LoadFile(path, swipe.KindCandidate)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Intern", "Engineer"}, items[0].Details)
	assert.Equal(t, swipe.KindCandidate, items[0].Kind)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"), swipe.KindJob)
	require.Error(t, err)
}

func TestInstructionCard(t *testing.T) {
	card := InstructionCard(swipe.ContentCandidates)
	assert.True(t, card.Instructional())
	assert.Contains(t, card.Summary, "candidate")
	require.NoError(t, Validate([]swipe.Item{card}))
}
