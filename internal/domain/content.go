package domain

// Content is the variant-specific payload of a workout draft.
// It is a closed set: only the four content types in this package implement it,
// and Type always matches the draft's DocumentType.
type Content interface {
	Type() DocumentType
	// TotalSeconds is the computed working + rest time of the payload.
	TotalSeconds() int
	CloneContent() Content
	isContent()
}

// --- Strength ---

// StrengthExercise is one lift or bodyweight movement in a strength workout.
type StrengthExercise struct {
	Name        string  `bson:"name" json:"name"`
	Sets        int     `bson:"sets" json:"sets"`
	Reps        int     `bson:"reps" json:"reps"`
	LoadKg      float64 `bson:"loadKg,omitempty" json:"loadKg,omitempty"`
	RestSeconds int     `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Notes       string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

type StrengthContent struct {
	Exercises []StrengthExercise `bson:"exercises" json:"exercises"`
}

func (c *StrengthContent) Type() DocumentType { return DocumentStrength }
func (c *StrengthContent) isContent()         {}

// TotalSeconds only counts prescribed rest; lifting time is not modelled.
func (c *StrengthContent) TotalSeconds() int {
	total := 0
	for _, e := range c.Exercises {
		sets := e.Sets
		if sets < 1 {
			sets = 1
		}
		total += sets * e.RestSeconds
	}
	return total
}

func (c *StrengthContent) CloneContent() Content { return c.Clone() }

func (c *StrengthContent) Clone() *StrengthContent {
	if c == nil {
		return nil
	}
	out := &StrengthContent{}
	if c.Exercises != nil {
		out.Exercises = make([]StrengthExercise, len(c.Exercises))
		copy(out.Exercises, c.Exercises)
	}
	return out
}

// --- Conditioning ---

// Interval is one work period followed by a rest period, optionally repeated.
type Interval struct {
	Name            string `bson:"name" json:"name"`
	DurationSeconds int    `bson:"durationSeconds" json:"durationSeconds"`
	RestSeconds     int    `bson:"restSeconds" json:"restSeconds"`
	TargetHeartRate int    `bson:"targetHeartRate,omitempty" json:"targetHeartRate,omitempty"`
	Repeats         int    `bson:"repeats,omitempty" json:"repeats,omitempty"`
}

// seconds returns the work+rest time, honouring Repeats (0 means once).
func (i Interval) seconds() int {
	n := i.Repeats
	if n < 1 {
		n = 1
	}
	return n * (i.DurationSeconds + i.RestSeconds)
}

type ConditioningContent struct {
	Intervals []Interval `bson:"intervals" json:"intervals"`
}

func (c *ConditioningContent) Type() DocumentType { return DocumentConditioning }
func (c *ConditioningContent) isContent()         {}

func (c *ConditioningContent) TotalSeconds() int {
	total := 0
	for _, iv := range c.Intervals {
		total += iv.seconds()
	}
	return total
}

func (c *ConditioningContent) CloneContent() Content { return c.Clone() }

func (c *ConditioningContent) Clone() *ConditioningContent {
	if c == nil {
		return nil
	}
	out := &ConditioningContent{}
	if c.Intervals != nil {
		out.Intervals = make([]Interval, len(c.Intervals))
		copy(out.Intervals, c.Intervals)
	}
	return out
}

// --- Hybrid ---

type BlockKind string

const (
	BlockExercise BlockKind = "exercise"
	BlockInterval BlockKind = "interval"
)

// HybridBlock is either a list of exercises or a single interval config,
// depending on Kind.
type HybridBlock struct {
	Name      string             `bson:"name" json:"name"`
	Kind      BlockKind          `bson:"kind" json:"kind"`
	Exercises []StrengthExercise `bson:"exercises,omitempty" json:"exercises,omitempty"`
	Interval  *Interval          `bson:"interval,omitempty" json:"interval,omitempty"`
}

func (b HybridBlock) clone() HybridBlock {
	out := b
	if b.Exercises != nil {
		out.Exercises = make([]StrengthExercise, len(b.Exercises))
		copy(out.Exercises, b.Exercises)
	}
	if b.Interval != nil {
		iv := *b.Interval
		out.Interval = &iv
	}
	return out
}

type HybridContent struct {
	Blocks []HybridBlock `bson:"blocks" json:"blocks"`
}

func (c *HybridContent) Type() DocumentType { return DocumentHybrid }
func (c *HybridContent) isContent()         {}

func (c *HybridContent) TotalSeconds() int {
	total := 0
	for _, b := range c.Blocks {
		switch b.Kind {
		case BlockInterval:
			if b.Interval != nil {
				total += b.Interval.seconds()
			}
		case BlockExercise:
			total += (&StrengthContent{Exercises: b.Exercises}).TotalSeconds()
		}
	}
	return total
}

func (c *HybridContent) CloneContent() Content { return c.Clone() }

func (c *HybridContent) Clone() *HybridContent {
	if c == nil {
		return nil
	}
	out := &HybridContent{}
	if c.Blocks != nil {
		out.Blocks = make([]HybridBlock, len(c.Blocks))
		for i, b := range c.Blocks {
			out.Blocks[i] = b.clone()
		}
	}
	return out
}

// --- Agility ---

type Drill struct {
	Name        string `bson:"name" json:"name"`
	Pattern     string `bson:"pattern,omitempty" json:"pattern,omitempty"` // e.g. "5-10-5", "T-drill"
	Repetitions int    `bson:"repetitions" json:"repetitions"`
	RestSeconds int    `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
}

type AgilityContent struct {
	Drills []Drill `bson:"drills" json:"drills"`
}

func (c *AgilityContent) Type() DocumentType { return DocumentAgility }
func (c *AgilityContent) isContent()         {}

func (c *AgilityContent) TotalSeconds() int {
	total := 0
	for _, d := range c.Drills {
		total += d.Repetitions * d.RestSeconds
	}
	return total
}

func (c *AgilityContent) CloneContent() Content { return c.Clone() }

func (c *AgilityContent) Clone() *AgilityContent {
	if c == nil {
		return nil
	}
	out := &AgilityContent{}
	if c.Drills != nil {
		out.Drills = make([]Drill, len(c.Drills))
		copy(out.Drills, c.Drills)
	}
	return out
}

// EmptyContent returns a zero payload for the given type, or nil if the type is unknown.
func EmptyContent(t DocumentType) Content {
	switch t {
	case DocumentStrength:
		return &StrengthContent{Exercises: []StrengthExercise{}}
	case DocumentConditioning:
		return &ConditioningContent{Intervals: []Interval{}}
	case DocumentHybrid:
		return &HybridContent{Blocks: []HybridBlock{}}
	case DocumentAgility:
		return &AgilityContent{Drills: []Drill{}}
	}
	return nil
}
