package domain

import "sort"

// Assignment pairs an identifier (trait ID or canonical category label)
// with its administrator-entered percentage weight. Assignments are the
// common currency of both weighting levels: trait weights within a
// survey and category weights within a subject's respondent panel.
type Assignment struct {
	ID            string `json:"id" yaml:"id"`
	WeightPercent int    `json:"weight_percent" yaml:"weight_percent"`
}

// WeightStatus classifies an assignment list at definition time.
// Incomplete and Overweight are advisory: administrators may still be
// editing, so neither blocks persistence of the definition. Aggregation
// re-normalizes over contributing entries regardless, see EffectiveWeights.
type WeightStatus string

const (
	// WeightsComplete means the weights sum to exactly 100.
	WeightsComplete WeightStatus = "complete"

	// WeightsIncomplete means the weights sum to less than 100.
	WeightsIncomplete WeightStatus = "incomplete"

	// WeightsOverweight means the weights sum to more than 100.
	WeightsOverweight WeightStatus = "overweight"
)

// ValidateAssignments checks an assignment list for structural errors
// and classifies its sum. A negative weight or an empty list is a hard
// error; any non-negative sum other than 100 is flagged but accepted,
// since definitions are validated while still being edited.
func ValidateAssignments(assignments []Assignment) (WeightStatus, error) {
	if len(assignments) == 0 {
		return "", &WeightError{Err: ErrNoAssignments}
	}

	sum := 0
	for _, a := range assignments {
		if a.WeightPercent < 0 {
			return "", &WeightError{ID: a.ID, Weight: a.WeightPercent, Err: ErrInvalidWeight}
		}
		sum += a.WeightPercent
	}

	switch {
	case sum == 100:
		return WeightsComplete, nil
	case sum < 100:
		return WeightsIncomplete, nil
	default:
		return WeightsOverweight, nil
	}
}

// EffectiveWeights rescales an assignment list over the entries that
// actually contributed data, so the kept weights sum to exactly 100.
// This is the engine's core partial-data policy: entries without
// contributing responses are excluded and the remaining weights grow
// proportionally, rather than zeroing out part of the score.
//
// Entries absent from contributing, and entries whose assigned weight is
// zero, are dropped. The result is nil when nothing usable remains;
// callers mark the corresponding trait Unscored or the run NoData.
func EffectiveWeights(assignments []Assignment, contributing map[string]bool) map[string]float64 {
	total := 0
	for _, a := range assignments {
		if contributing[a.ID] && a.WeightPercent > 0 {
			total += a.WeightPercent
		}
	}
	if total == 0 {
		return nil
	}

	effective := make(map[string]float64, len(assignments))
	for _, a := range assignments {
		if contributing[a.ID] && a.WeightPercent > 0 {
			effective[a.ID] = float64(a.WeightPercent) / float64(total) * 100
		}
	}
	return effective
}

// SplitByContribution partitions assignment IDs into those with and
// without contributing data, each sorted for stable reporting output.
func SplitByContribution(assignments []Assignment, contributing map[string]bool) (kept, missing []string) {
	for _, a := range assignments {
		if contributing[a.ID] {
			kept = append(kept, a.ID)
		} else {
			missing = append(missing, a.ID)
		}
	}
	sort.Strings(kept)
	sort.Strings(missing)
	return kept, missing
}
