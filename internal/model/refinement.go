package model

// QuestionKind identifies how a refinement question is answered.
type QuestionKind string

const (
	// QuestionSingleChoice takes exactly one option.
	QuestionSingleChoice QuestionKind = "single_choice"
	// QuestionMultiChoice takes any subset of options.
	QuestionMultiChoice QuestionKind = "multi_choice"
	// QuestionRankedOrder takes all options in a user-chosen order.
	QuestionRankedOrder QuestionKind = "ranked_order"
)

// QuestionOption is one selectable option of a refinement question.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RefinementQuestion is a follow-up configuration question shown after focus
// selection. Default carries the server's suggested answer: one value for
// single-choice, a set for multi-choice, a full ordering for ranked-order.
type RefinementQuestion struct {
	ID      string           `json:"id"`
	Prompt  string           `json:"prompt"`
	Kind    QuestionKind     `json:"kind"`
	Options []QuestionOption `json:"options"`
	Default []string         `json:"default,omitempty"`
}

// Answer is the tagged answer value for one refinement question. The Kind tag
// decides which field is meaningful and which edit operations apply:
// Scalar for single-choice, Values as a set for multi-choice, Values as an
// ordered list for ranked-order.
type Answer struct {
	Kind   QuestionKind `json:"kind"`
	Scalar string       `json:"value,omitempty"`
	Values []string     `json:"values,omitempty"`
}

// ScalarAnswer builds a single-choice answer.
func ScalarAnswer(value string) Answer {
	return Answer{Kind: QuestionSingleChoice, Scalar: value}
}

// SetAnswer builds a multi-choice answer.
func SetAnswer(values ...string) Answer {
	return Answer{Kind: QuestionMultiChoice, Values: values}
}

// OrderAnswer builds a ranked-order answer.
func OrderAnswer(values ...string) Answer {
	return Answer{Kind: QuestionRankedOrder, Values: values}
}

// Select replaces the single-choice value. It is a no-op for other kinds.
func (a *Answer) Select(value string) {
	if a.Kind != QuestionSingleChoice {
		return
	}
	a.Scalar = value
}

// Toggle flips set membership of value. It is a no-op for other kinds.
func (a *Answer) Toggle(value string) {
	if a.Kind != QuestionMultiChoice {
		return
	}
	for i, v := range a.Values {
		if v == value {
			a.Values = append(a.Values[:i], a.Values[i+1:]...)
			return
		}
	}
	a.Values = append(a.Values, value)
}

// Contains reports set membership for multi-choice answers.
func (a Answer) Contains(value string) bool {
	for _, v := range a.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Move shifts the item at index by one position up (delta -1) or down
// (delta +1) in a ranked-order answer. Moves past either boundary, jumps of
// more than one position, and other kinds are all no-ops.
func (a *Answer) Move(index, delta int) {
	if a.Kind != QuestionRankedOrder {
		return
	}
	if delta != -1 && delta != 1 {
		return
	}
	target := index + delta
	if index < 0 || index >= len(a.Values) || target < 0 || target >= len(a.Values) {
		return
	}
	a.Values[index], a.Values[target] = a.Values[target], a.Values[index]
}

// InitialAnswer builds the pre-populated answer for a question per its kind:
// single-choice takes the server default or the first option, multi-choice the
// server default or an empty set, ranked-order the server default or the
// options' natural order.
func InitialAnswer(q RefinementQuestion) Answer {
	switch q.Kind {
	case QuestionSingleChoice:
		if len(q.Default) > 0 {
			return ScalarAnswer(q.Default[0])
		}
		if len(q.Options) > 0 {
			return ScalarAnswer(q.Options[0].Value)
		}
		return ScalarAnswer("")
	case QuestionMultiChoice:
		return SetAnswer(append([]string(nil), q.Default...)...)
	case QuestionRankedOrder:
		if len(q.Default) > 0 {
			return OrderAnswer(append([]string(nil), q.Default...)...)
		}
		order := make([]string, len(q.Options))
		for i, opt := range q.Options {
			order[i] = opt.Value
		}
		return OrderAnswer(order...)
	default:
		return Answer{Kind: q.Kind}
	}
}
