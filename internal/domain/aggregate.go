package domain

import "sort"

// ScoredResponse is one normalized answer annotated with the respondent
// coordinates needed for category grouping. The normalize stage produces
// these from the frozen response snapshot.
type ScoredResponse struct {
	RespondentID string
	Category     string // canonical category label
	TraitID      string
	ItemID       string
	Score        float64
	Clamped      bool
}

// AggregateByCategory groups the scored responses of one trait by
// respondent category and returns the arithmetic mean per category.
// Categories with zero contributing responses are absent from the map,
// which is what allows proportional weight rescaling downstream. Items
// a category answered only partially contribute only their answered
// items to the mean; there is no imputation.
func AggregateByCategory(scored []ScoredResponse, traitID string) map[string]CategoryScore {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scored {
		if s.TraitID != traitID {
			continue
		}
		sums[s.Category] += s.Score
		counts[s.Category]++
	}

	out := make(map[string]CategoryScore, len(sums))
	for cat, sum := range sums {
		out[cat] = CategoryScore{
			Category:  cat,
			Score:     sum / float64(counts[cat]),
			Responses: counts[cat],
		}
	}
	return out
}

// ScoreTrait combines one trait's category means into a single trait
// score using the subject's category weights. Only categories present in
// both the score map and the weight assignments are kept; the kept
// weights rescale to sum to 100 and the score is their weighted mean.
// With no kept category the trait is Unscored.
func ScoreTrait(traitID string, categoryScores map[string]CategoryScore, categoryWeights []Assignment) TraitScore {
	contributing := make(map[string]bool, len(categoryScores))
	for cat := range categoryScores {
		contributing[cat] = true
	}

	kept, missing := SplitByContribution(categoryWeights, contributing)
	ts := TraitScore{
		TraitID:                traitID,
		ContributingCategories: kept,
		MissingCategories:      missing,
	}
	if len(categoryWeights) > 0 {
		ts.Completeness = float64(len(kept)) / float64(len(categoryWeights))
	}

	effective := EffectiveWeights(categoryWeights, contributing)
	if effective == nil {
		ts.Unscored = true
		return ts
	}

	for cat, w := range effective {
		ts.Score += w / 100 * categoryScores[cat].Score
	}
	return ts
}

// ScoreComposite combines the scored traits into one composite score
// using the survey's trait weights, under the same rescaling policy one
// level up: Unscored traits are excluded and the remaining trait weights
// grow proportionally. The composite is nil when every trait is
// Unscored; a subject with zero usable responses gets NoData, not zero.
func ScoreComposite(traitScores []TraitScore, traitWeights []Assignment) (*float64, CompletenessFlag) {
	byID := make(map[string]TraitScore, len(traitScores))
	contributing := make(map[string]bool, len(traitScores))
	for _, ts := range traitScores {
		byID[ts.TraitID] = ts
		if !ts.Unscored {
			contributing[ts.TraitID] = true
		}
	}

	effective := EffectiveWeights(traitWeights, contributing)
	if effective == nil {
		return nil, CompletenessNoData
	}

	var composite float64
	for id, w := range effective {
		composite += w / 100 * byID[id].Score
	}

	flag := CompletenessFull
	if len(contributing) < len(traitWeights) {
		flag = CompletenessPartial
	} else {
		for _, ts := range traitScores {
			if len(ts.MissingCategories) > 0 {
				flag = CompletenessPartial
				break
			}
		}
	}
	return &composite, flag
}

// CollectClamped extracts the clamp flags from a scored set in a stable
// order for inclusion on the result record.
func CollectClamped(scored []ScoredResponse) []ClampFlag {
	var flags []ClampFlag
	for _, s := range scored {
		if s.Clamped {
			flags = append(flags, ClampFlag{RespondentID: s.RespondentID, ItemID: s.ItemID})
		}
	}
	sort.Slice(flags, func(i, j int) bool {
		if flags[i].RespondentID != flags[j].RespondentID {
			return flags[i].RespondentID < flags[j].RespondentID
		}
		return flags[i].ItemID < flags[j].ItemID
	})
	return flags
}
