package mongo

import (
	"alcyxob/team-workouts/internal/domain"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWorkoutDocumentRoundTripThroughBSON(t *testing.T) {
	draft, err := domain.NewWorkoutDraft(domain.DocumentHybrid, time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	draft.Name = "Pre-season circuit"
	draft.DurationMinutes = 50
	draft.AssignedPlayerIDs = []string{"p1", "p2"}
	draft.Content = &domain.HybridContent{Blocks: []domain.HybridBlock{
		{Name: "Lift", Kind: domain.BlockExercise, Exercises: []domain.StrengthExercise{{Name: "Squat", Sets: 3, Reps: 5}}},
		{Name: "Run", Kind: domain.BlockInterval, Interval: &domain.Interval{Name: "400m", DurationSeconds: 90, RestSeconds: 60}},
	}}
	w := &domain.Workout{ID: primitive.NewObjectID(), CoachID: primitive.NewObjectID(), Draft: draft, Version: 3}

	doc, err := toWorkoutDocument(w)
	if err != nil {
		t.Fatalf("toWorkoutDocument: %v", err)
	}
	if doc.HybridContent == nil || doc.StrengthContent != nil || doc.ConditioningContent != nil || doc.AgilityContent != nil {
		t.Fatalf("only the hybrid sub-document should be set: %+v", doc)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	var decoded workoutDocument
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	got, err := decoded.toWorkout()
	if err != nil {
		t.Fatalf("toWorkout: %v", err)
	}
	if !got.Draft.Equal(draft) {
		t.Errorf("draft changed through storage:\n got %+v\nwant %+v", got.Draft, draft)
	}
	if got.Version != 3 || got.CoachID != w.CoachID {
		t.Errorf("metadata lost: %+v", got)
	}
}

func TestWorkoutDocumentMissingContentDecodesEmpty(t *testing.T) {
	doc := &workoutDocument{DocumentType: domain.DocumentAgility, Date: time.Now()}
	w, err := doc.toWorkout()
	if err != nil {
		t.Fatal(err)
	}
	agility, ok := w.Draft.Content.(*domain.AgilityContent)
	if !ok {
		t.Fatalf("content = %T, want *AgilityContent", w.Draft.Content)
	}
	if len(agility.Drills) != 0 {
		t.Errorf("drills = %v, want none", agility.Drills)
	}
	if w.Draft.AssignedPlayerIDs == nil || w.Draft.AssignedTeamIDs == nil {
		t.Error("assignment sets should decode as empty, not nil")
	}
}

func TestWorkoutDocumentRejectsMismatchAndUnknownType(t *testing.T) {
	draft, _ := domain.NewWorkoutDraft(domain.DocumentStrength, time.Now())
	draft.Content = &domain.AgilityContent{}
	if _, err := toWorkoutDocument(&domain.Workout{Draft: draft}); !errors.Is(err, domain.ErrContentMismatch) {
		t.Errorf("mismatched content: err = %v", err)
	}

	doc := &workoutDocument{DocumentType: "yoga"}
	if _, err := doc.toWorkout(); !errors.Is(err, domain.ErrUnknownDocumentType) {
		t.Errorf("unknown type: err = %v", err)
	}
}
