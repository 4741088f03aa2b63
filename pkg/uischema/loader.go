package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/waggy/go-wizard/pkg/model"
)

// LoadFS walks the provided filesystem and parses JSON/YAML overlay files.
// When fsys is nil or no overlay files are present, the returned store is
// empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{steps: make(map[int64]StepOverlay)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isOverlayFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, raw := range doc.Steps {
			id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("uischema: file %s defines invalid step id %q", path, rawID)
			}
			if _, exists := store.steps[id]; exists {
				return fmt.Errorf("uischema: duplicate step %d (file %s)", id, path)
			}
			overlay, err := normaliseStep(raw, id, path)
			if err != nil {
				return err
			}
			store.steps[id] = overlay
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Step returns the overlay for the supplied step id.
func (s *Store) Step(id int64) (StepOverlay, bool) {
	if s == nil {
		return StepOverlay{}, false
	}
	overlay, ok := s.steps[id]
	return overlay, ok
}

// Empty reports whether the store holds any overlays.
func (s *Store) Empty() bool {
	return s == nil || len(s.steps) == 0
}

type documentFile struct {
	Steps map[string]stepFile `json:"steps" yaml:"steps"`
}

type stepFile struct {
	Title       model.LocalizedText    `json:"title" yaml:"title"`
	Description model.LocalizedText    `json:"description" yaml:"description"`
	Fields      map[string]FieldConfig `json:"fields" yaml:"fields"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

func normaliseStep(raw stepFile, id int64, source string) (StepOverlay, error) {
	overlay := StepOverlay{
		StepID:      id,
		Source:      source,
		Title:       raw.Title,
		Description: raw.Description,
		Fields:      make(map[string]FieldConfig, len(raw.Fields)),
	}
	for key, cfg := range raw.Fields {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return StepOverlay{}, fmt.Errorf("uischema: step %d (file %s) has an empty field key", id, source)
		}
		if _, exists := overlay.Fields[trimmed]; exists {
			return StepOverlay{}, fmt.Errorf("uischema: step %d (file %s) defines field %q twice", id, source, trimmed)
		}
		overlay.Fields[trimmed] = cloneFieldConfig(cfg)
	}
	return overlay, nil
}

func cloneFieldConfig(cfg FieldConfig) FieldConfig {
	out := cfg
	if len(cfg.Metadata) > 0 {
		out.Metadata = make(map[string]string, len(cfg.Metadata))
		for k, v := range cfg.Metadata {
			out.Metadata[k] = v
		}
	}
	if cfg.Order != nil {
		order := *cfg.Order
		out.Order = &order
	}
	return out
}

func isOverlayFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
