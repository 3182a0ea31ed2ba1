package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/opspulse/workmon/internal/domain"
)

// FileActivityReader implements domain.ActivityReader over a JSON export of
// activity records. It backs offline review tooling; production queries go
// to the reporting service behind the same interface.
type FileActivityReader struct {
	records []domain.ActivityRecord
}

// LoadActivityRecords reads a JSON array of activity records from disk.
func LoadActivityRecords(path string) (*FileActivityReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity export: %w", err)
	}
	var records []domain.ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse activity export: %w", err)
	}
	return &FileActivityReader{records: records}, nil
}

// NewFileActivityReader creates a reader over in-memory records.
func NewFileActivityReader(records []domain.ActivityRecord) *FileActivityReader {
	return &FileActivityReader{records: records}
}

// FetchRecords returns up to limit records whose subject is in userIDs,
// preserving export order.
func (r *FileActivityReader) FetchRecords(ctx context.Context, userIDs []string, limit int) ([]domain.ActivityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = struct{}{}
	}

	var out []domain.ActivityRecord
	for _, record := range r.records {
		if _, ok := allowed[record.SubjectID]; !ok {
			continue
		}
		out = append(out, record)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Ensure FileActivityReader implements domain.ActivityReader.
var _ domain.ActivityReader = (*FileActivityReader)(nil)
