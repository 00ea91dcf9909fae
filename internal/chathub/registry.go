package chathub

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"cloudchat/backend/internal/models"
)

// ErrAlreadyRegistered is returned when a connection sends a second
// register event. The original registration stays untouched.
var ErrAlreadyRegistered = errors.New("participant already registered")

// Registry tracks every registered participant by connection id.
// It is owned by the hub goroutine; no internal locking.
type Registry struct {
	participants map[string]*models.Participant
	validate     *validator.Validate
}

func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*models.Participant),
		validate:     validator.New(),
	}
}

// Register validates the profile and creates an idle participant for the
// connection id. Returns a *models.ValidationError for bad profile fields
// and ErrAlreadyRegistered for duplicate registration.
func (r *Registry) Register(id string, profile models.Profile) (*models.Participant, error) {
	if _, ok := r.participants[id]; ok {
		return nil, ErrAlreadyRegistered
	}

	if err := r.validate.Struct(profile); err != nil {
		return nil, profileError(err)
	}

	p := &models.Participant{
		ID:      id,
		Profile: profile,
		Status:  models.StatusIdle,
	}
	r.participants[id] = p
	return p, nil
}

// Get returns the participant for the id, or nil when unknown.
func (r *Registry) Get(id string) *models.Participant {
	return r.participants[id]
}

// Remove deletes the registry entry. Idempotent; removing an unknown id is
// a no-op.
func (r *Registry) Remove(id string) {
	delete(r.participants, id)
}

// Count returns the number of registered participants.
func (r *Registry) Count() int {
	return len(r.participants)
}

// profileError converts the first validator failure into a field-level
// ValidationError with a stable reason code.
func profileError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &models.ValidationError{Field: "profile", Reason: "invalid_profile"}
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "max" {
			return &models.ValidationError{Field: "name", Reason: "name_too_long"}
		}
		return &models.ValidationError{Field: "name", Reason: "name_required"}
	case "Age":
		return &models.ValidationError{Field: "age", Reason: "age_out_of_range"}
	case "Gender":
		return &models.ValidationError{Field: "gender", Reason: "unknown_gender"}
	}
	return &models.ValidationError{Field: "profile", Reason: "invalid_profile"}
}
