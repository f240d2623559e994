// Package catalog supplies item pools for swipe sessions: the built-in demo
// pools and pool files in YAML or JSON.
package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/spigell/hh-swiper/internal/swipe"
)

//go:embed demo/*.yaml
var demoFS embed.FS

var (
	ErrEmptyID     = errors.New("item id is empty")
	ErrDuplicateID = errors.New("item id is repeated")
)

// aliases map record keys used by other tools onto item fields.
var aliases = map[string]string{
	"description":   "summary",
	"requirements":  "tags",
	"skills":        "tags",
	"benefits":      "details",
	"history":       "details",
	"alternate_url": "url",
}

type poolFile struct {
	Items []map[string]any `yaml:"items" json:"items"`
}

// Demo returns the built-in pool for the content type.
func Demo(content swipe.ContentType) ([]swipe.Item, error) {
	name := "demo/jobs.yaml"
	if content == swipe.ContentCandidates {
		name = "demo/candidates.yaml"
	}

	data, err := demoFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading demo pool: %w", err)
	}

	return Parse(data, ".yaml", content.ItemKind())
}

// LoadFile reads a pool file. The format is picked by extension; anything
// other than .json is parsed as YAML.
func LoadFile(path string, kind swipe.Kind) ([]swipe.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pool file %q: %w", path, err)
	}

	items, err := Parse(data, filepath.Ext(path), kind)
	if err != nil {
		return nil, fmt.Errorf("pool file %q: %w", path, err)
	}
	return items, nil
}

// Parse decodes a pool document. Items without a kind get defaultKind.
func Parse(data []byte, ext string, defaultKind swipe.Kind) ([]swipe.Item, error) {
	var file poolFile

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		for _, record := range file.Items {
			for key, value := range record {
				record[key] = fromJSONNumbers(value)
			}
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	items := make([]swipe.Item, 0, len(file.Items))
	for idx, record := range file.Items {
		item, err := Decode(record)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", idx, err)
		}
		if item.Kind == "" {
			item.Kind = defaultKind
		}
		items = append(items, item)
	}

	if err := Validate(items); err != nil {
		return nil, err
	}

	return items, nil
}

// Decode turns a generic record into an item. Known aliases are renamed and
// keys the item has no field for end up in Extra. A list and its alias are
// merged; for scalars the item's own key wins over an alias.
func Decode(record map[string]any) (swipe.Item, error) {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	// aliases first, so canonical keys are applied last
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := isAlias(keys[i]), isAlias(keys[j])
		if ai != aj {
			return ai
		}
		return keys[i] < keys[j]
	})

	normalized := make(map[string]any, len(record))
	for _, raw := range keys {
		value := record[raw]
		key := normalizeKey(raw)
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		if existing, ok := normalized[key]; ok {
			value = mergeLists(existing, value)
		}
		normalized[key] = value
	}

	// ids are often numeric in exported data
	if id, ok := normalized["id"]; ok && id != nil {
		normalized["id"] = stringify(id)
	}

	var item swipe.Item
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &item,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return item, err
	}

	if err := decoder.Decode(normalized); err != nil {
		return item, fmt.Errorf("decode item: %w", err)
	}

	for _, key := range md.Unused {
		if item.Extra == nil {
			item.Extra = make(map[string]any)
		}
		item.Extra[key] = normalized[key]
	}

	item.ID = strings.TrimSpace(item.ID)
	return item, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func isAlias(key string) bool {
	_, ok := aliases[normalizeKey(key)]
	return ok
}

// fromJSONNumbers turns json.Number values into int where they fit and
// float64 otherwise, matching what the YAML decoder yields.
func fromJSONNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			if int64(int(n)) == n {
				return int(n)
			}
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = fromJSONNumbers(v[i])
		}
		return v
	case map[string]any:
		for key := range v {
			v[key] = fromJSONNumbers(v[key])
		}
		return v
	}
	return value
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return fmt.Sprintf("%v", value)
}

func mergeLists(a, b any) any {
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if !aok || !bok {
		return b
	}
	return append(append([]any{}, as...), bs...)
}

// Validate checks every item against its struct rules and rejects empty or
// repeated ids.
func Validate(items []swipe.Item) error {
	validate := validator.New()
	seen := make(map[string]int, len(items))

	var errs []error
	for idx, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			errs = append(errs, fmt.Errorf("item %d: %w", idx, ErrEmptyID))
			continue
		}
		if first, ok := seen[item.ID]; ok {
			errs = append(errs, fmt.Errorf("item %d (%s, first seen at %d): %w", idx, item.ID, first, ErrDuplicateID))
			continue
		}
		seen[item.ID] = idx

		if err := validate.Struct(item); err != nil {
			errs = append(errs, fmt.Errorf("item %d (%s): %w", idx, item.ID, err))
		}
	}

	return errors.Join(errs...)
}

// InstructionCard is the how-to card that can lead a pool.
func InstructionCard(content swipe.ContentType) swipe.Item {
	subject := "job"
	if content == swipe.ContentCandidates {
		subject = "candidate"
	}

	return swipe.Item{
		ID:      "how-to-swipe",
		Kind:    swipe.KindInstruction,
		Title:   "How to swipe",
		Summary: fmt.Sprintf("Swipe right on a %s you like, left to pass. Tap a card for details.", subject),
		Details: []string{
			"Drag past 100px or use the arrow keys to decide",
			"Some of your likes turn into matches",
		},
	}
}
