package appointments

import (
	"context"
	"sync"
)

// Repository defines the interface for appointment storage.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)
}

// InMemoryRepository stores appointments in memory. Used in development and
// tests; the booking flow itself does not depend on persistence.
type InMemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*Appointment
	order []string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*Appointment)}
}

// Create stores an appointment in memory.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[appt.ID] = appt
	r.order = append(r.order, appt.ID)
	return nil
}

// GetByID retrieves an appointment by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return appt, nil
}

// List returns all appointments, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.byID[r.order[i]])
	}
	return out, nil
}
