package domain

// NormalizedScore is the outcome of mapping one raw answer onto the
// common 0-100 scale.
type NormalizedScore struct {
	// Value is the normalized score in [0,100]. Meaningless when
	// Excluded is true.
	Value float64

	// Clamped is true when the raw value fell outside the item's
	// declared bounds and was clamped to the nearest bound. Clamped
	// values still score; discarding them would silently bias the
	// result, so they are flagged instead.
	Clamped bool

	// Excluded is true for answers that never enter numeric
	// aggregation (text items and text-kind values).
	Excluded bool
}

// Normalize maps one raw answer onto the common 0-100 scale according
// to its item's response type:
//
//   - rating: linear map from the item's scale bounds, (raw-min)/(max-min)*100,
//     defaulting to a 1-5 scale; out-of-range values clamp to the nearest
//     bound and are flagged
//   - boolean: true scores 100, false scores 0
//   - multiple_choice: the selected option's weight, or an even ordinal
//     split ordinal/(count-1)*100 for options without one
//   - text: always excluded
//
// Normalize is total over well-typed input. A kind/type mismatch or a
// reference to an undefined option is an upstream contract breach and
// returns an InvariantError.
func Normalize(r Response, item Item) (NormalizedScore, error) {
	if item.Type == TypeText || r.Value.Kind == KindText {
		if item.Type != TypeText || r.Value.Kind != KindText {
			return NormalizedScore{}, invariant(r, ErrValueKindMismatch)
		}
		return NormalizedScore{Excluded: true}, nil
	}

	switch item.Type {
	case TypeRating:
		if r.Value.Kind != KindNumber {
			return NormalizedScore{}, invariant(r, ErrValueKindMismatch)
		}
		return normalizeRating(r, item)

	case TypeBoolean:
		if r.Value.Kind != KindBool {
			return NormalizedScore{}, invariant(r, ErrValueKindMismatch)
		}
		if r.Value.Bool {
			return NormalizedScore{Value: 100}, nil
		}
		return NormalizedScore{Value: 0}, nil

	case TypeMultipleChoice:
		if r.Value.Kind != KindOption {
			return NormalizedScore{}, invariant(r, ErrValueKindMismatch)
		}
		return normalizeChoice(r, item)

	default:
		return NormalizedScore{}, invariant(r, ErrValueKindMismatch)
	}
}

func normalizeRating(r Response, item Item) (NormalizedScore, error) {
	bounds := item.Bounds()
	if bounds.Max <= bounds.Min {
		return NormalizedScore{}, invariant(r, ErrDegenerateScale)
	}

	raw, clamped := r.Value.Number, false
	if raw < bounds.Min {
		raw, clamped = bounds.Min, true
	} else if raw > bounds.Max {
		raw, clamped = bounds.Max, true
	}

	value := (raw - bounds.Min) / (bounds.Max - bounds.Min) * 100
	return NormalizedScore{Value: value, Clamped: clamped}, nil
}

func normalizeChoice(r Response, item Item) (NormalizedScore, error) {
	for ordinal, opt := range item.Options {
		if opt.ID != r.Value.Option {
			continue
		}
		if opt.Weight != nil {
			w, clamped := *opt.Weight, false
			if w < 0 {
				w, clamped = 0, true
			} else if w > 100 {
				w, clamped = 100, true
			}
			return NormalizedScore{Value: w, Clamped: clamped}, nil
		}
		// Single-option items have no ordinal spread to split over.
		if len(item.Options) == 1 {
			return NormalizedScore{Value: 100}, nil
		}
		return NormalizedScore{Value: float64(ordinal) / float64(len(item.Options)-1) * 100}, nil
	}
	return NormalizedScore{}, invariant(r, ErrUnknownOption)
}

func invariant(r Response, err error) *InvariantError {
	return &InvariantError{
		SubjectID:    r.SubjectID,
		RespondentID: r.RespondentID,
		ItemID:       r.ItemID,
		Err:          err,
	}
}
