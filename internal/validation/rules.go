package validation

import (
	"alcyxob/team-workouts/internal/domain"
	"fmt"
	"strings"
	"time"
)

func checkScalars(c *collector, d *domain.WorkoutDraft) {
	if strings.TrimSpace(d.Name) == "" {
		c.err("name", domain.CodeRequiredField, "Workout name is required")
	}
	if !d.DocumentType.Valid() {
		c.err("documentType", domain.CodeRequiredField, "Workout type is required")
	}
	if d.Date.IsZero() {
		c.err("date", domain.CodeRequiredField, "Workout date is required")
	}
	if d.DurationMinutes <= 0 {
		c.err("durationMinutes", domain.CodeInvalidDuration, "Duration must be greater than zero")
	}
}

func checkAssignments(c *collector, d *domain.WorkoutDraft) {
	if len(d.AssignedPlayerIDs) == 0 && len(d.AssignedTeamIDs) == 0 {
		c.err("assignments", domain.CodeNoAssignments, "Assign at least one player or team")
	}
}

func (e *Engine) checkContent(c *collector, d *domain.WorkoutDraft, rules RuleSet) {
	if err := d.CheckContent(); err != nil {
		c.err("content", domain.CodeRequiredField, "Workout content does not match its type")
		return
	}

	switch content := d.Content.(type) {
	case *domain.StrengthContent:
		checkStrength(c, content)
	case *domain.ConditioningContent:
		e.checkConditioning(c, content)
	case *domain.HybridContent:
		checkHybrid(c, content)
	case *domain.AgilityContent:
		checkAgility(c, content)
	default:
		// unreachable while Content stays sealed
		c.err("content", domain.CodeRequiredField, fmt.Sprintf("Unsupported content %T", content))
		return
	}

	if rules.DurationBounds.set() {
		checkBounds(c, d.Content, rules.DurationBounds)
	}
}

func checkStrength(c *collector, s *domain.StrengthContent) {
	if len(s.Exercises) == 0 {
		c.err("exercises", domain.CodeEmptyWorkout, "Add at least one exercise")
	}
}

func (e *Engine) checkConditioning(c *collector, s *domain.ConditioningContent) {
	if len(s.Intervals) == 0 {
		c.err("intervals", domain.CodeEmptyProgram, "Add at least one interval")
		return
	}
	for i, iv := range s.Intervals {
		if iv.DurationSeconds < e.cfg.MinIntervalSeconds {
			c.err(fmt.Sprintf("intervals[%d].duration", i), domain.CodeInvalidDuration,
				fmt.Sprintf("Interval %d must last at least %d seconds", i+1, e.cfg.MinIntervalSeconds))
		}
	}
}

func checkHybrid(c *collector, s *domain.HybridContent) {
	if len(s.Blocks) == 0 {
		c.err("blocks", domain.CodeEmptyWorkout, "Add at least one block")
		return
	}
	for i, b := range s.Blocks {
		switch b.Kind {
		case domain.BlockExercise:
			if len(b.Exercises) == 0 {
				c.err(fmt.Sprintf("blocks[%d].exercises", i), domain.CodeEmptyBlock,
					fmt.Sprintf("Block %d has no exercises", i+1))
			}
		case domain.BlockInterval:
			if b.Interval == nil {
				c.err(fmt.Sprintf("blocks[%d].interval", i), domain.CodeMissingInterval,
					fmt.Sprintf("Block %d has no interval configuration", i+1))
			}
		default:
			c.err(fmt.Sprintf("blocks[%d].kind", i), domain.CodeRequiredField,
				fmt.Sprintf("Block %d needs a kind (exercise or interval)", i+1))
		}
	}
}

func checkAgility(c *collector, s *domain.AgilityContent) {
	if len(s.Drills) == 0 {
		c.err("drills", domain.CodeEmptyWorkout, "Add at least one drill")
		return
	}
	for i, d := range s.Drills {
		if d.Repetitions < 1 {
			c.err(fmt.Sprintf("drills[%d].repetitions", i), domain.CodeInvalidRepetitions,
				fmt.Sprintf("Drill %d needs at least one repetition", i+1))
		}
	}
}

func checkBounds(c *collector, content domain.Content, b Bounds) {
	total := time.Duration(content.TotalSeconds()) * time.Second
	switch {
	case b.Min > 0 && total < b.Min:
		c.err("durationMinutes", domain.CodeDurationOutOfRange,
			fmt.Sprintf("Total duration %s is below the minimum of %s", total, b.Min))
	case b.Max > 0 && total > b.Max:
		c.err("durationMinutes", domain.CodeDurationOutOfRange,
			fmt.Sprintf("Total duration %s exceeds the maximum of %s", total, b.Max))
	}
}
