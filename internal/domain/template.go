package domain

// Template returns the starter patch for a new workout of type t.
// Each template carries one placeholder item so the draft is editable straight away.
func Template(t DocumentType) DraftPatch {
	name := ""
	duration := 0
	intensity := IntensityModerate
	var content Content

	switch t {
	case DocumentStrength:
		name, duration = "Strength session", 60
		content = &StrengthContent{Exercises: []StrengthExercise{
			{Name: "Back squat", Sets: 4, Reps: 6, RestSeconds: 120},
		}}
	case DocumentConditioning:
		name, duration, intensity = "Conditioning intervals", 30, IntensityHigh
		content = &ConditioningContent{Intervals: []Interval{
			{Name: "Tempo run", DurationSeconds: 60, RestSeconds: 60, Repeats: 8},
		}}
	case DocumentHybrid:
		name, duration = "Hybrid circuit", 45
		content = &HybridContent{Blocks: []HybridBlock{
			{Name: "Strength block", Kind: BlockExercise, Exercises: []StrengthExercise{
				{Name: "Push-up", Sets: 3, Reps: 12, RestSeconds: 45},
			}},
			{Name: "Finisher", Kind: BlockInterval, Interval: &Interval{
				Name: "Bike sprint", DurationSeconds: 20, RestSeconds: 40, Repeats: 6,
			}},
		}}
	case DocumentAgility:
		name, duration = "Agility ladder", 25
		content = &AgilityContent{Drills: []Drill{
			{Name: "Pro shuttle", Pattern: "5-10-5", Repetitions: 6, RestSeconds: 45},
		}}
	default:
		return DraftPatch{}
	}

	return DraftPatch{
		Name:            &name,
		DurationMinutes: &duration,
		Intensity:       &intensity,
		Content:         content,
	}
}
