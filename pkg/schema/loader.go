package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS walks the provided filesystem and parses JSON/YAML schema documents.
// When fsys is nil or no schema files are present, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		sections:   make(map[string]Section),
		strategies: make(map[string]StrategySchema),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		return store.merge(doc, path)
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// documentFile is the on-disk layout. Options and fragments exist so files can
// declare YAML anchors once and alias them from several fields.
type documentFile struct {
	Options    map[string][]Option `json:"options" yaml:"options"`
	Fragments  map[string]any      `json:"fragments" yaml:"fragments"`
	Sections   map[string]Section  `json:"sections" yaml:"sections"`
	Strategies []StrategySchema    `json:"strategies" yaml:"strategies"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

func (s *Store) merge(doc documentFile, source string) error {
	for name, section := range doc.Sections {
		id := strings.TrimSpace(name)
		if id == "" {
			return fmt.Errorf("schema: file %s defines an empty section name", source)
		}
		if _, exists := s.sections[id]; exists {
			return fmt.Errorf("schema: duplicate section %q (file %s)", id, source)
		}
		if err := section.Validate(); err != nil {
			return fmt.Errorf("schema: file %s: %w", source, err)
		}
		s.sections[id] = section
	}

	for _, strategy := range doc.Strategies {
		key := strings.TrimSpace(strategy.Key)
		if key == "" {
			return fmt.Errorf("schema: file %s defines a strategy without key", source)
		}
		if _, exists := s.strategies[key]; exists {
			return fmt.Errorf("schema: duplicate strategy %q (file %s)", key, source)
		}
		if err := strategy.Parameters.Validate(); err != nil {
			return fmt.Errorf("schema: file %s strategy %q parameters: %w", source, key, err)
		}
		if err := strategy.Logics.Validate(); err != nil {
			return fmt.Errorf("schema: file %s strategy %q logics: %w", source, key, err)
		}
		strategy.Key = key
		s.strategies[key] = strategy
		s.order = append(s.order, key)
	}
	return nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
