package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// DocumentType selects which content payload a workout carries.
type DocumentType string

const (
	DocumentStrength     DocumentType = "strength"
	DocumentConditioning DocumentType = "conditioning"
	DocumentHybrid       DocumentType = "hybrid"
	DocumentAgility      DocumentType = "agility"
)

// DocumentTypes lists every supported variant in a stable order.
var DocumentTypes = []DocumentType{DocumentStrength, DocumentConditioning, DocumentHybrid, DocumentAgility}

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentStrength, DocumentConditioning, DocumentHybrid, DocumentAgility:
		return true
	}
	return false
}

// ParseDocumentType converts user input into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDocumentType, s)
	}
	return t, nil
}

type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
	IntensityMax      Intensity = "max"
)

var (
	ErrUnknownDocumentType = errors.New("unknown workout document type")
	ErrContentMismatch     = errors.New("content does not match workout document type")
)

// MinDurationMinutes is the duration given to a freshly initialized draft.
const MinDurationMinutes = 1

// WorkoutDraft is the editable workout document.
type WorkoutDraft struct {
	Name              string       `json:"name"`
	DocumentType      DocumentType `json:"documentType"`
	Date              time.Time    `json:"date"`
	DurationMinutes   int          `json:"durationMinutes"`
	Location          *string      `json:"location,omitempty"`
	AssignedPlayerIDs []string     `json:"assignedPlayerIds"`
	AssignedTeamIDs   []string     `json:"assignedTeamIds"`
	Intensity         *Intensity   `json:"intensity,omitempty"`
	Tags              []string     `json:"tags,omitempty"`
	Notes             *string      `json:"notes,omitempty"`
	Content           Content      `json:"content"`
}

// NewWorkoutDraft returns a draft of the given type with every required field
// defaulted: empty assignment sets, the calendar day of now, the minimal duration
// and an empty payload.
func NewWorkoutDraft(t DocumentType, now time.Time) (*WorkoutDraft, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentType, t)
	}
	return &WorkoutDraft{
		DocumentType:      t,
		Date:              NormalizeDate(now),
		DurationMinutes:   MinDurationMinutes,
		AssignedPlayerIDs: []string{},
		AssignedTeamIDs:   []string{},
		Content:           EmptyContent(t),
	}, nil
}

// Clone returns a deep copy. Mutating the copy never affects the receiver.
func (d *WorkoutDraft) Clone() *WorkoutDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.Location = cloneString(d.Location)
	out.Notes = cloneString(d.Notes)
	if d.Intensity != nil {
		v := *d.Intensity
		out.Intensity = &v
	}
	out.AssignedPlayerIDs = cloneStrings(d.AssignedPlayerIDs)
	out.AssignedTeamIDs = cloneStrings(d.AssignedTeamIDs)
	out.Tags = cloneStrings(d.Tags)
	if d.Content != nil {
		out.Content = d.Content.CloneContent()
	}
	return &out
}

// Equal reports structural equality over every field, including content.
// A nil slice and an empty one compare equal.
func (d *WorkoutDraft) Equal(other *WorkoutDraft) bool {
	if d == nil || other == nil {
		return d == other
	}
	return sameValue(reflect.ValueOf(*d), reflect.ValueOf(*other))
}

var timeType = reflect.TypeOf(time.Time{})

// sameValue walks a and b like reflect.DeepEqual, treating nil and empty
// slices alike and comparing times with time.Time.Equal.
func sameValue(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Slice:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return sameValue(a.Elem(), b.Elem())
	case reflect.Struct:
		if a.Type() == timeType {
			return a.Interface().(time.Time).Equal(b.Interface().(time.Time))
		}
		for i := 0; i < a.NumField(); i++ {
			if !sameValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
}

// CheckContent enforces that the populated payload matches DocumentType.
func (d *WorkoutDraft) CheckContent() error {
	if d.Content == nil {
		return fmt.Errorf("%w: missing %s content", ErrContentMismatch, d.DocumentType)
	}
	if d.Content.Type() != d.DocumentType {
		return fmt.Errorf("%w: %s content on %s workout", ErrContentMismatch, d.Content.Type(), d.DocumentType)
	}
	return nil
}

// HasPlayer reports whether id is in the assigned player set.
func (d *WorkoutDraft) HasPlayer(id string) bool { return containsSorted(d.AssignedPlayerIDs, id) }

// HasTeam reports whether id is in the assigned team set.
func (d *WorkoutDraft) HasTeam(id string) bool { return containsSorted(d.AssignedTeamIDs, id) }

// DraftPatch is a partial update. Nil fields are left untouched.
// DocumentType is deliberately absent: it cannot change during a session.
type DraftPatch struct {
	Name              *string
	Date              *time.Time
	DurationMinutes   *int
	Location          *string
	AssignedPlayerIDs *[]string
	AssignedTeamIDs   *[]string
	Intensity         *Intensity
	Tags              *[]string
	Notes             *string
	Content           Content
}

// IsEmpty reports whether the patch touches nothing.
func (p DraftPatch) IsEmpty() bool {
	return p.Name == nil && p.Date == nil && p.DurationMinutes == nil && p.Location == nil &&
		p.AssignedPlayerIDs == nil && p.AssignedTeamIDs == nil && p.Intensity == nil &&
		p.Tags == nil && p.Notes == nil && p.Content == nil
}

// Apply returns a new draft with the patch shallow-merged into d.
// d itself is not modified.
func (p DraftPatch) Apply(d *WorkoutDraft) (*WorkoutDraft, error) {
	if p.Content != nil && p.Content.Type() != d.DocumentType {
		return nil, fmt.Errorf("%w: %s content on %s workout", ErrContentMismatch, p.Content.Type(), d.DocumentType)
	}
	out := d.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Date != nil {
		out.Date = NormalizeDate(*p.Date)
	}
	if p.DurationMinutes != nil {
		out.DurationMinutes = *p.DurationMinutes
	}
	if p.Location != nil {
		out.Location = cloneString(p.Location)
	}
	if p.AssignedPlayerIDs != nil {
		out.AssignedPlayerIDs = NormalizeIDs(*p.AssignedPlayerIDs)
	}
	if p.AssignedTeamIDs != nil {
		out.AssignedTeamIDs = NormalizeIDs(*p.AssignedTeamIDs)
	}
	if p.Intensity != nil {
		v := *p.Intensity
		out.Intensity = &v
	}
	if p.Tags != nil {
		out.Tags = cloneStrings(*p.Tags)
		if out.Tags == nil {
			out.Tags = []string{}
		}
	}
	if p.Notes != nil {
		out.Notes = cloneString(p.Notes)
	}
	if p.Content != nil {
		out.Content = p.Content.CloneContent()
	}
	return out, nil
}

// NormalizeDate truncates t to its calendar day in UTC.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// NormalizeIDs returns a sorted, de-duplicated, non-nil copy of ids with blanks removed.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func containsSorted(ids []string, id string) bool {
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
