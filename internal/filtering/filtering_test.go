package filtering

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-swiper/internal/headhunter"
	"github.com/spigell/hh-swiper/internal/matches"
	"github.com/spigell/hh-swiper/internal/swipe"
)

func pool() []swipe.Item {
	return []swipe.Item{
		{ID: "1", Title: "Go Developer", Company: "Acme"},
		{ID: "2", Title: "SRE", Company: "Globex", Extra: map[string]any{"has_test": true}},
		{ID: "3", Title: "Backend", Company: "Initech", Extra: map[string]any{"employer_id": "42"}},
		{ID: "4", Title: "Platform", Company: "acme"},
		{ID: "5", Title: "Data", Company: "Umbrella"},
	}
}

func ids(items []swipe.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestRunAllSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.json")
	store, err := matches.Load(path)
	require.NoError(t, err)
	store.Append(&matches.Match{ID: "5", MatchedAt: time.Now()})
	require.NoError(t, store.Save())

	core, observed := observer.New(zapcore.InfoLevel)
	cfg := &Config{Companies: []string{"ACME", "42"}, MatchesFile: path}

	left, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default(), pool())
	require.NoError(t, err)
	assert.Empty(t, ids(left))

	steps := observed.FilterMessage("filter step").All()
	require.Len(t, steps, 4)

	want := map[string][3]int64{
		"already_matched": {5, 1, 4},
		"companies":       {4, 3, 1},
		"with_test":       {1, 1, 0},
		"applied_history": {0, 0, 0},
	}
	for _, entry := range steps {
		ctx := entry.ContextMap()
		name := ctx["name"].(string)
		got := [3]int64{ctx["initial"].(int64), ctx["dropped"].(int64), ctx["left"].(int64)}
		assert.Equal(t, want[name], got, name)
	}
}

func TestRunKeepsOrder(t *testing.T) {
	left, err := Run(context.Background(), &Config{}, Deps{}, []Filter{NewWithTest()}, pool())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "4", "5"}, ids(left))
}

func TestRunSkipsDisabled(t *testing.T) {
	steps := []Filter{NewWithTest(), NewCompanies()}
	DisableByName(steps, "with_test", "requested")

	left, err := Run(context.Background(), &Config{Companies: []string{"Umbrella"}}, Deps{}, steps, pool())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(left))

	statuses := Describe(steps)
	require.Len(t, statuses, 2)
	assert.False(t, statuses[0].Enabled)
	assert.Equal(t, "requested", statuses[0].Reason)
	assert.Equal(t, "Umbrella", statuses[1].Details["companies"])
}

func TestCompaniesNumericEmployerID(t *testing.T) {
	items := []swipe.Item{
		{ID: "1", Company: "Initech", Extra: map[string]any{"employer_id": 98765432}},
		{ID: "2", Company: "Globex"},
	}

	left, err := Run(context.Background(), &Config{Companies: []string{"98765432"}}, Deps{}, []Filter{NewCompanies()}, items)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(left))
}

func TestRunValidationError(t *testing.T) {
	_, err := Run(context.Background(), &Config{Companies: []string{" "}}, Deps{}, []Filter{NewCompanies()}, pool())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "companies")
}

func TestAlreadyMatchedBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := Run(context.Background(), &Config{MatchesFile: path}, Deps{}, []Filter{NewAlreadyMatched()}, pool())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already_matched")
}

func TestAppliedHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "n1", "vacancy": map[string]any{"id": "3"}}},
			"pages": 1,
		})
	}))
	t.Cleanup(server.Close)

	hh := headhunter.New(context.Background(), zap.NewNop(), "token")
	hh.APIURL = server.URL

	left, err := Run(context.Background(), &Config{}, Deps{HH: hh}, []Filter{NewAppliedHistory()}, pool())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4", "5"}, ids(left))
}
