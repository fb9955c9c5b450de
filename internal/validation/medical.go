package validation

import (
	"alcyxob/team-workouts/internal/domain"
	"context"
	"fmt"
	"sort"
	"strings"
)

// namedItem is a piece of workout content a restriction can be matched against.
type namedItem struct {
	field string
	text  string
}

type heartRateItem struct {
	field string
	bpm   int
}

// checkMedical cross-references restricted players against the draft content.
// The matching is a best-effort heuristic: substrings for body parts and
// activities, a heart-rate ceiling for intensity. It never emits errors.
func (e *Engine) checkMedical(ctx context.Context, c *collector, d *domain.WorkoutDraft, in Input) {
	ids := playersToCheck(d, in.Teams)
	if len(ids) == 0 {
		return
	}

	records, err := in.Medical.Lookup(ctx, ids)
	if err != nil {
		c.warn("medical", domain.CodeMedicalCheckFail,
			fmt.Sprintf("Medical restrictions could not be checked: %v", err))
		return
	}

	names := make(map[string]string, len(in.Players))
	for _, p := range in.Players {
		names[p.ID] = p.Name
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	sorted := make([]domain.MedicalRecord, 0, len(records))
	for _, r := range records {
		if _, ok := wanted[r.PlayerID]; ok && r.Restricted() {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PlayerID < sorted[j].PlayerID })

	exercises, activities, rates := contentItems(d.Content)
	for _, rec := range sorted {
		player := names[rec.PlayerID]
		if player == "" {
			player = rec.PlayerID
		}
		for _, r := range rec.Restrictions {
			switch r.Category {
			case domain.RestrictBodyPart:
				if it, ok := firstMatch(exercises, r.Value); ok {
					c.warn(it.field, domain.CodeMedicalBodyPart,
						fmt.Sprintf("%s has a body part restriction (%s) that conflicts with %q", player, r.Value, it.text))
				}
			case domain.RestrictActivity:
				if it, ok := firstMatch(activities, r.Value); ok {
					c.warn(it.field, domain.CodeMedicalActivity,
						fmt.Sprintf("%s has an activity restriction (%s) that conflicts with %q", player, r.Value, it.text))
				}
			case domain.RestrictIntensity:
				e.checkIntensity(c, d, player, r, rates)
			}
		}
	}
}

func (e *Engine) checkIntensity(c *collector, d *domain.WorkoutDraft, player string, r domain.Restriction, rates []heartRateItem) {
	limit := r.MaxHeartRate
	if limit <= 0 {
		limit = e.cfg.HeartRateThreshold
	}
	for _, hr := range rates {
		if hr.bpm > limit {
			c.warn(hr.field, domain.CodeMedicalIntensity,
				fmt.Sprintf("%s has an intensity restriction (max %d bpm) but the target is %d bpm", player, limit, hr.bpm))
			return
		}
	}
	if d.Intensity != nil && (*d.Intensity == domain.IntensityHigh || *d.Intensity == domain.IntensityMax) {
		c.warn("intensity", domain.CodeMedicalIntensity,
			fmt.Sprintf("%s has an intensity restriction but the workout intensity is %s", player, *d.Intensity))
	}
}

// playersToCheck returns the assigned players plus members of assigned teams, sorted.
func playersToCheck(d *domain.WorkoutDraft, teams []domain.Team) []string {
	ids := append([]string(nil), d.AssignedPlayerIDs...)
	for _, t := range teams {
		if d.HasTeam(t.ID) {
			ids = append(ids, t.PlayerIDs...)
		}
	}
	return domain.NormalizeIDs(ids)
}

func firstMatch(items []namedItem, value string) (namedItem, bool) {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return namedItem{}, false
	}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.text), needle) {
			return it, true
		}
	}
	return namedItem{}, false
}

// contentItems flattens the content into matchable names and heart-rate targets.
// exercises feed body part checks; activities is a superset used for activity checks.
func contentItems(content domain.Content) (exercises, activities []namedItem, rates []heartRateItem) {
	switch c := content.(type) {
	case *domain.StrengthContent:
		for i, ex := range c.Exercises {
			exercises = append(exercises, namedItem{fmt.Sprintf("exercises[%d].name", i), ex.Name})
		}
	case *domain.ConditioningContent:
		for i, iv := range c.Intervals {
			activities = append(activities, namedItem{fmt.Sprintf("intervals[%d].name", i), iv.Name})
			if iv.TargetHeartRate > 0 {
				rates = append(rates, heartRateItem{fmt.Sprintf("intervals[%d].targetHeartRate", i), iv.TargetHeartRate})
			}
		}
	case *domain.HybridContent:
		for i, b := range c.Blocks {
			for j, ex := range b.Exercises {
				exercises = append(exercises, namedItem{fmt.Sprintf("blocks[%d].exercises[%d].name", i, j), ex.Name})
			}
			if b.Interval != nil {
				activities = append(activities, namedItem{fmt.Sprintf("blocks[%d].interval.name", i), b.Interval.Name})
				if b.Interval.TargetHeartRate > 0 {
					rates = append(rates, heartRateItem{fmt.Sprintf("blocks[%d].interval.targetHeartRate", i), b.Interval.TargetHeartRate})
				}
			}
		}
	case *domain.AgilityContent:
		for i, dr := range c.Drills {
			exercises = append(exercises, namedItem{fmt.Sprintf("drills[%d].name", i), dr.Name})
			if dr.Pattern != "" {
				activities = append(activities, namedItem{fmt.Sprintf("drills[%d].pattern", i), dr.Pattern})
			}
		}
	}
	activities = append(append([]namedItem(nil), exercises...), activities...)
	return exercises, activities, rates
}
