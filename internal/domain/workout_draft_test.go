package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDraftPatchApply(t *testing.T) {
	base, err := NewWorkoutDraft(DocumentConditioning, time.Date(2026, 2, 3, 18, 45, 0, 0, time.FixedZone("CET", 3600)))
	if err != nil {
		t.Fatal(err)
	}
	name := "Hill repeats"
	date := time.Date(2026, 2, 10, 23, 0, 0, 0, time.UTC)
	players := []string{"p2", "p1", "p2", ""}

	got, err := DraftPatch{Name: &name, Date: &date, AssignedPlayerIDs: &players}.Apply(base)
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != name {
		t.Errorf("Name = %q, want %q", got.Name, name)
	}
	if want := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if len(got.AssignedPlayerIDs) != 2 || got.AssignedPlayerIDs[0] != "p1" || got.AssignedPlayerIDs[1] != "p2" {
		t.Errorf("AssignedPlayerIDs = %v, want [p1 p2]", got.AssignedPlayerIDs)
	}
	if base.Name != "" {
		t.Error("Apply modified the original draft")
	}
}

func TestDraftPatchRejectsMismatchedContent(t *testing.T) {
	base, _ := NewWorkoutDraft(DocumentHybrid, time.Now())
	_, err := DraftPatch{Content: &StrengthContent{}}.Apply(base)
	if !errors.Is(err, ErrContentMismatch) {
		t.Errorf("err = %v, want ErrContentMismatch", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	loc, notes := "Pitch 2", "bring cones"
	intensity := IntensityHigh
	d := &WorkoutDraft{
		Name:              "Hybrid",
		DocumentType:      DocumentHybrid,
		Location:          &loc,
		Notes:             &notes,
		Intensity:         &intensity,
		AssignedPlayerIDs: []string{"p1"},
		Tags:              []string{"pre-season"},
		Content: &HybridContent{Blocks: []HybridBlock{
			{Name: "A", Kind: BlockExercise, Exercises: []StrengthExercise{{Name: "Row"}}},
			{Name: "B", Kind: BlockInterval, Interval: &Interval{Name: "Bike", DurationSeconds: 30}},
		}},
	}
	c := d.Clone()
	if !c.Equal(d) {
		t.Fatal("clone is not equal to the original")
	}

	*c.Location = "Gym"
	c.AssignedPlayerIDs[0] = "p9"
	c.Tags[0] = "in-season"
	hc := c.Content.(*HybridContent)
	hc.Blocks[0].Exercises[0].Name = "Pull-up"
	hc.Blocks[1].Interval.DurationSeconds = 90

	if *d.Location != "Pitch 2" || d.AssignedPlayerIDs[0] != "p1" || d.Tags[0] != "pre-season" {
		t.Error("scalar/slice fields are shared with the clone")
	}
	orig := d.Content.(*HybridContent)
	if orig.Blocks[0].Exercises[0].Name != "Row" || orig.Blocks[1].Interval.DurationSeconds != 30 {
		t.Error("content is shared with the clone")
	}
	if c.Equal(d) {
		t.Error("Equal() = true after modifying the clone")
	}
}

func TestTotalSeconds(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    int
	}{
		{"conditioning", &ConditioningContent{Intervals: []Interval{
			{DurationSeconds: 30, RestSeconds: 30, Repeats: 4},
			{DurationSeconds: 120, RestSeconds: 0},
		}}, 360},
		{"hybrid", &HybridContent{Blocks: []HybridBlock{
			{Kind: BlockExercise, Exercises: []StrengthExercise{{Sets: 3, RestSeconds: 60}}},
			{Kind: BlockInterval, Interval: &Interval{DurationSeconds: 20, RestSeconds: 10, Repeats: 2}},
		}}, 240},
		{"agility", &AgilityContent{Drills: []Drill{{Repetitions: 5, RestSeconds: 30}}}, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.TotalSeconds(); got != tt.want {
				t.Errorf("TotalSeconds() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTemplatesMatchTheirType(t *testing.T) {
	for _, dt := range DocumentTypes {
		p := Template(dt)
		if p.Content == nil || p.Content.Type() != dt {
			t.Errorf("Template(%s) content = %T", dt, p.Content)
		}
		if p.Name == nil || *p.Name == "" {
			t.Errorf("Template(%s) has no name", dt)
		}
	}
	if !Template("unknown").IsEmpty() {
		t.Error("Template for an unknown type should be empty")
	}
}

func TestEqualTreatsEmptySlicesAsUnset(t *testing.T) {
	base, err := NewWorkoutDraft(DocumentStrength, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	noTags := []string{}
	got, err := DraftPatch{Tags: &noTags}.Apply(base)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(base) {
		t.Error("an empty tag list should equal no tags")
	}

	decoded := base.Clone()
	decoded.AssignedPlayerIDs, decoded.AssignedTeamIDs = nil, nil
	decoded.Content = &StrengthContent{Exercises: []StrengthExercise{}}
	if !decoded.Equal(base) {
		t.Error("nil and empty assignment sets and exercise lists should compare equal")
	}

	tagged := []string{"recovery"}
	if got, _ = (DraftPatch{Tags: &tagged}).Apply(base); got.Equal(base) {
		t.Error("a real tag should make the drafts differ")
	}
	moved := base.Clone()
	moved.Date = moved.Date.AddDate(0, 0, 1)
	if moved.Equal(base) {
		t.Error("different dates should make the drafts differ")
	}
}
