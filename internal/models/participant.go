package models

import "fmt"

// Gender is the closed set of genders a participant can register with.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender maps a wire string to a Gender. The second return value
// reports whether the string named a known gender.
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s), true
	}
	return "", false
}

// TargetGender is a filter value: any concrete Gender or the "any" wildcard.
type TargetGender string

const TargetAny TargetGender = "any"

func ParseTargetGender(s string) (TargetGender, bool) {
	if TargetGender(s) == TargetAny {
		return TargetAny, true
	}
	g, ok := ParseGender(s)
	return TargetGender(g), ok
}

// Accepts reports whether a participant of gender g satisfies this filter value.
func (t TargetGender) Accepts(g Gender) bool {
	return t == TargetAny || Gender(t) == g
}

// AgeGroup is one of the fixed age brackets used for queue bucketing.
type AgeGroup string

const (
	AgeGroup12to16 AgeGroup = "12-16"
	AgeGroup18to26 AgeGroup = "18-26"
	AgeGroup26to35 AgeGroup = "26-35"
	AgeGroup35Plus AgeGroup = "35+"
)

func ParseAgeGroup(s string) (AgeGroup, bool) {
	switch AgeGroup(s) {
	case AgeGroup12to16, AgeGroup18to26, AgeGroup26to35, AgeGroup35Plus:
		return AgeGroup(s), true
	}
	return "", false
}

// AgeGroupOf derives the bracket for an age. The bands are total over the
// valid registration range [12,100]: 12-16, 17-26 (17 is clamped upward
// into "18-26"), 27-35 and 36+.
func AgeGroupOf(age int) AgeGroup {
	switch {
	case age <= 16:
		return AgeGroup12to16
	case age <= 26:
		return AgeGroup18to26
	case age <= 35:
		return AgeGroup26to35
	default:
		return AgeGroup35Plus
	}
}

// Status is the lifecycle state of a connected participant.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSearching Status = "searching"
	StatusPaired    Status = "paired"
)

// Profile holds the ephemeral per-connection identity a participant
// registers with. Validated with go-playground/validator tags.
type Profile struct {
	Name   string `json:"name" validate:"required,max=20"`
	Age    int    `json:"age" validate:"gte=12,lte=100"`
	Gender Gender `json:"gender" validate:"required,oneof=male female other"`
}

// SearchFilter is a searching participant's acceptance criteria.
type SearchFilter struct {
	TargetGender TargetGender `json:"target_gender"`
	AgeGroup     AgeGroup     `json:"age_group"`
}

// Participant is one connected user. Owned and mutated exclusively by the
// hub goroutine; never shared across goroutines.
type Participant struct {
	ID      string
	Profile Profile
	Status  Status
	Filter  *SearchFilter
	PairID  string
}

// PartnerInfo is the sanitized view of a participant sent to the other side
// of a match. Connection ids and filters are never leaked.
type PartnerInfo struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// SanitizedProfile returns the PartnerInfo view of the participant.
func (p *Participant) SanitizedProfile() PartnerInfo {
	return PartnerInfo{Name: p.Profile.Name, Age: p.Profile.Age, Gender: p.Profile.Gender}
}

// AgeGroup returns the bracket derived from the participant's registered age.
func (p *Participant) AgeGroup() AgeGroup {
	return AgeGroupOf(p.Profile.Age)
}

// ValidationError is a recoverable, field-level rejection of client input.
// It is reported to the originating connection only; no state mutation
// happens when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
