// Package matches keeps the list of matched items on disk so later sessions
// can skip them.
package matches

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spigell/hh-swiper/internal/swipe"
)

type Match struct {
	ID              string            `json:"id"`
	ContentType     swipe.ContentType `json:"content_type,omitempty"`
	Title           string            `json:"title,omitempty"`
	Company         string            `json:"company,omitempty"`
	URL             string            `json:"url,omitempty"`
	MatchPercentage int               `json:"match_percentage"`
	Tier            swipe.Tier        `json:"tier"`
	MatchedAt       time.Time         `json:"matched_at"`
	Message         string            `json:"message,omitempty"`
}

type Store struct {
	path  string
	Items []*Match `json:"items"`
}

// FromScored builds a match record for a promoted card.
func FromScored(content swipe.ContentType, item swipe.ScoredItem, at time.Time) *Match {
	return &Match{
		ID:              item.ID,
		ContentType:     content,
		Title:           item.DisplayName(),
		Company:         item.Company,
		URL:             item.URL,
		MatchPercentage: item.MatchPercentage,
		Tier:            item.Tier,
		MatchedAt:       at.UTC(),
	}
}

// Load reads the store at path. A missing or empty file is an empty store.
func Load(path string) (*Store, error) {
	store := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading matches file: %w", err)
	}

	if len(data) == 0 {
		return store, nil
	}

	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("parsing matches file %q: %w", path, err)
	}

	return store, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Len() int {
	return len(s.Items)
}

// Append adds matches, replacing older records with the same id.
func (s *Store) Append(items ...*Match) {
	for _, item := range items {
		if item == nil {
			continue
		}
		if idx := s.index(item.ID); idx >= 0 {
			s.Items[idx] = item
			continue
		}
		s.Items = append(s.Items, item)
	}
}

func (s *Store) Find(id string) *Match {
	if idx := s.index(id); idx >= 0 {
		return s.Items[idx]
	}
	return nil
}

func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Save writes the store through a temporary file so a crash never leaves a
// half written list behind.
func (s *Store) Save() error {
	if s.path == "" {
		return errors.New("matches file path is empty")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating matches dir: %w", err)
	}

	file, err := os.CreateTemp(dir, ".matches_*.json")
	if err != nil {
		return err
	}
	defer os.Remove(file.Name())

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(file.Name(), s.path)
}

func (s *Store) index(id string) int {
	for idx, item := range s.Items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}
