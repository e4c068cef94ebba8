package source

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
)

// Source returns the stored layout of a floor.
type Source interface {
	Floor(ctx context.Context, id string) (*floorplan.Floor, error)
	Close() error
}

// Lister is implemented by sources that can enumerate their floors.
type Lister interface {
	Floors(ctx context.Context) ([]string, error)
}

// Load fetches id from src. A floor the source does not know is returned as
// an empty floor so the viewer can offer the editor instead.
func Load(ctx context.Context, src Source, id string, logger *log.Logger) (*floorplan.Floor, error) {
	if err := errors.ValidateFloorID(id); err != nil {
		return nil, err
	}
	f, err := src.Floor(ctx, id)
	if errors.IsNotFound(err) {
		if logger != nil {
			logger.Warn("floor not found, showing empty floor", "floor", id)
		}
		return &floorplan.Floor{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeFloorNotFound, "floor %q not found", id)
}

// Static serves floors from memory. The zero value is empty and ready.
type Static struct {
	mu     sync.RWMutex
	floors map[string]floorplan.Floor
}

// NewStatic returns a Static holding floors.
func NewStatic(floors ...floorplan.Floor) *Static {
	s := &Static{}
	for _, f := range floors {
		s.Put(f)
	}
	return s
}

// Put stores a copy of f, replacing any floor with the same id.
func (s *Static) Put(f floorplan.Floor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.floors == nil {
		s.floors = make(map[string]floorplan.Floor)
	}
	f.Blocks = floorplan.Clone(f.Blocks)
	s.floors[f.ID] = f
}

func (s *Static) Floor(_ context.Context, id string) (*floorplan.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.floors[id]
	if !ok {
		return nil, notFound(id)
	}
	f.Blocks = floorplan.Clone(f.Blocks)
	return &f, nil
}

func (s *Static) Floors(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.floors))
	for id := range s.floors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Static) Close() error { return nil }
