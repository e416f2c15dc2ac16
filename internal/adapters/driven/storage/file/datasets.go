package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure DatasetStore implements the interface.
var _ driven.DatasetStore = (*DatasetStore)(nil)

// DatasetStore reads and writes CSV datasets.
type DatasetStore struct{}

// NewDatasetStore creates a CSV dataset store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{}
}

// Load reads the CSV file at path. Short rows are padded and long rows
// truncated to the header width.
func (s *DatasetStore) Load(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	ds := &domain.Dataset{
		Name:    filepath.Base(path),
		Columns: header,
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(ds.Rows)+1, err)
		}
		ds.Rows = append(ds.Rows, fitRow(record, len(header)))
	}

	return ds, nil
}

// Save writes ds to path as CSV, creating parent directories.
func (s *DatasetStore) Save(path string, ds *domain.Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return fmt.Errorf("%w: dataset has no columns", domain.ErrInvalidInput)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dataset directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(ds.Rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write rows: %w", err)
	}

	return f.Close()
}

func fitRow(record []string, width int) []string {
	if len(record) == width {
		return record
	}
	row := make([]string, width)
	copy(row, record)
	return row
}
