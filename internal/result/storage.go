package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/signalnine/cyclebench/benchmark"
)

// Record is the saved form of one run. Only the raw passes are stored; the
// aggregates are rebuilt on read.
type Record struct {
	ID        string                 `json:"id"`
	Suite     string                 `json:"suite"`
	CreatedAt time.Time              `json:"created_at"`
	Passes    []benchmark.PassResult `json:"passes"`
}

func NewRecord(suite string, res *benchmark.Result) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Suite:     suite,
		CreatedAt: time.Now().UTC(),
		Passes:    res.Passes,
	}
}

// Result re-aggregates the stored passes.
func (r *Record) Result() (*benchmark.Result, error) {
	res, err := benchmark.NewResult(r.Passes)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return res, nil
}

// RecordPath returns where rec is written inside dir.
func RecordPath(dir string, rec *Record) string {
	stamp := rec.CreatedAt.Format("2006-01-02T15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", stamp, rec.ID[:min(len(rec.ID), 8)]))
}

func WriteRecord(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling record: %w", err)
	}
	path := RecordPath(dir, rec)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	return path, nil
}

func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return &rec, nil
}
