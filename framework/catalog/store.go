package catalog

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-opengenerics/framework/container"
)

// Snapshot is a loaded catalog together with the container built from it.
type Snapshot struct {
	Catalog   *Catalog
	Container *container.Container
	Source    string
	LoadedAt  time.Time
}

// Store holds the current snapshot. Readers never block writers; a reload
// replaces the snapshot as a whole.
type Store struct {
	current atomic.Pointer[Snapshot]
	logger  *zap.Logger
}

// NewStore returns an empty store. A nil logger discards output.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger.Named("catalog")}
}

// Current returns the latest snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot { return s.current.Load() }

// Swap installs next and returns the previous snapshot.
func (s *Store) Swap(next *Snapshot) *Snapshot { return s.current.Swap(next) }

// Load parses the catalog at path and installs it. On error the current
// snapshot is left untouched.
func (s *Store) Load(path string) (*Snapshot, error) {
	cat, err := Load(path)
	if err != nil {
		return nil, err
	}
	ctr, err := cat.Container(s.logger)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Catalog: cat, Container: ctr, Source: path, LoadedAt: time.Now()}
	s.Swap(snap)
	s.logger.Info("catalog loaded",
		zap.String("path", path),
		zap.Stringer("version", cat.Version),
		zap.Int("types", cat.Registry.Len()),
		zap.Int("registrations", len(cat.Registrations)),
	)
	return snap, nil
}
