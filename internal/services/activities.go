package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityExists   = errors.New("activity already exists")
)

// ActivityRegistry keeps activity definitions in memory, in creation order.
// Callers always receive copies.
type ActivityRegistry struct {
	mu         sync.RWMutex
	activities []models.Activity
	logger     *zap.Logger
	now        func() time.Time
}

func NewActivityRegistry(logger *zap.Logger) *ActivityRegistry {
	return &ActivityRegistry{
		logger: logger,
		now:    time.Now,
	}
}

func (r *ActivityRegistry) List() []models.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a.Clone())
	}
	return out
}

func (r *ActivityRegistry) Get(id string) (models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	return r.activities[i].Clone(), nil
}

// Create validates the activity, assigns an ID when missing and stores it.
func (r *ActivityRegistry) Create(activity models.Activity) (models.Activity, error) {
	if err := activity.Validate(); err != nil {
		return models.Activity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if activity.ID == "" {
		activity.ID = uuid.NewString()
	} else if r.indexOf(activity.ID) >= 0 {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityExists, activity.ID)
	}

	now := r.now()
	activity.CreatedAt = now
	activity.UpdatedAt = now
	stored := activity.Clone()
	r.activities = append(r.activities, stored)

	r.logger.Info("Activity created",
		zap.String("id", stored.ID),
		zap.String("name", stored.Name),
		zap.String("location", stored.Location))

	return stored.Clone(), nil
}

func (r *ActivityRegistry) Update(id string, activity models.Activity) (models.Activity, error) {
	if err := activity.Validate(); err != nil {
		return models.Activity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	activity.ID = id
	activity.CreatedAt = r.activities[i].CreatedAt
	activity.UpdatedAt = r.now()
	r.activities[i] = activity.Clone()

	r.logger.Info("Activity updated", zap.String("id", id))

	return activity.Clone(), nil
}

func (r *ActivityRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	r.activities = append(r.activities[:i], r.activities[i+1:]...)

	r.logger.Info("Activity deleted", zap.String("id", id))
	return nil
}

// SeedDefaults stores the starter activities when the registry is empty.
func (r *ActivityRegistry) SeedDefaults() error {
	r.mu.RLock()
	empty := len(r.activities) == 0
	r.mu.RUnlock()
	if !empty {
		return nil
	}

	for _, a := range models.DefaultActivities() {
		if _, err := r.Create(a); err != nil {
			return fmt.Errorf("seeding %q: %w", a.Name, err)
		}
	}
	return nil
}

func (r *ActivityRegistry) Locations() []string {
	return models.UniqueLocations(r.List())
}

func (r *ActivityRegistry) indexOf(id string) int {
	for i, a := range r.activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}
