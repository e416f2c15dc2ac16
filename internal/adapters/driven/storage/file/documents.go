package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure DocumentLoader implements the interface.
var _ driven.DocumentLoader = (*DocumentLoader)(nil)

// DocumentLoader reads documents from YAML or JSON files, or a single
// document from a text, markdown or HTML file.
type DocumentLoader struct{}

// NewDocumentLoader creates a document loader.
func NewDocumentLoader() *DocumentLoader {
	return &DocumentLoader{}
}

type documentFile struct {
	Documents []domain.Document `json:"documents" yaml:"documents"`
}

// Load reads path and validates every document. IDs must be present and
// unique within the file, and content must not be blank.
func (l *DocumentLoader) Load(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	var docs []domain.Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		docs, err = decodeYAML(data)
	case ".json":
		docs, err = decodeJSON(data)
	default:
		format, ok := textFormats[ext]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported document file %q (want .yaml, .json, .md, .txt or .html)", domain.ErrUnsupportedType, ext)
		}
		docs = decodeText(path, data, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, filepath.Base(path), err)
	}

	if err := validateDocuments(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func decodeYAML(data []byte) ([]domain.Document, error) {
	var list []domain.Document
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped documentFile
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Documents, nil
}

func decodeJSON(data []byte) ([]domain.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []domain.Document
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}

	var wrapped documentFile
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Documents, nil
}

func validateDocuments(docs []domain.Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents found", domain.ErrInvalidInput)
	}

	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("%w: document %d has no id", domain.ErrInvalidInput, i+1)
		}
		if prev, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: documents %d and %d share id %q", domain.ErrInvalidInput, prev+1, i+1, d.ID)
		}
		seen[d.ID] = i
		if strings.TrimSpace(d.Content) == "" {
			return fmt.Errorf("%w: document %q has no content", domain.ErrInvalidInput, d.ID)
		}
	}
	return nil
}
