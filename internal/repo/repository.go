package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/apiprobe/internal/report"
)

// ErrNotFound is returned by RunStore.Get for unknown run IDs.
var ErrNotFound = errors.New("run not found")

// StoredRun is one completed suite execution kept for the API.
type StoredRun struct {
	ID        string          `json:"id"`
	Suite     string          `json:"suite"`
	StartedAt time.Time       `json:"startedAt"`
	Document  report.Document `json:"report"`
}

// RunStore is the port a persistence layer implements. Only the memory
// adapter exists; runs do not survive the process.
type RunStore interface {
	Save(ctx context.Context, run *StoredRun) error
	List(ctx context.Context) ([]*StoredRun, error)
	Get(ctx context.Context, id string) (*StoredRun, error)
}
