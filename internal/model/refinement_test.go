package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialAnswer(t *testing.T) {
	tests := []struct {
		name     string
		question RefinementQuestion
		want     Answer
	}{
		{
			name: "single choice uses server default",
			question: RefinementQuestion{
				ID:      "q1",
				Kind:    QuestionSingleChoice,
				Options: []QuestionOption{{Value: "weekly"}, {Value: "monthly"}},
				Default: []string{"monthly"},
			},
			want: ScalarAnswer("monthly"),
		},
		{
			name: "single choice falls back to first option",
			question: RefinementQuestion{
				ID:      "q1",
				Kind:    QuestionSingleChoice,
				Options: []QuestionOption{{Value: "weekly"}, {Value: "monthly"}},
			},
			want: ScalarAnswer("weekly"),
		},
		{
			name: "multi choice defaults to empty set",
			question: RefinementQuestion{
				ID:      "q2",
				Kind:    QuestionMultiChoice,
				Options: []QuestionOption{{Value: "a"}, {Value: "b"}},
			},
			want: SetAnswer(),
		},
		{
			name: "multi choice uses server default set",
			question: RefinementQuestion{
				ID:      "q2",
				Kind:    QuestionMultiChoice,
				Options: []QuestionOption{{Value: "a"}, {Value: "b"}},
				Default: []string{"b"},
			},
			want: SetAnswer("b"),
		},
		{
			name: "ranked order uses natural option order",
			question: RefinementQuestion{
				ID:      "q3",
				Kind:    QuestionRankedOrder,
				Options: []QuestionOption{{Value: "x"}, {Value: "y"}, {Value: "z"}},
			},
			want: OrderAnswer("x", "y", "z"),
		},
		{
			name: "ranked order prefers server order",
			question: RefinementQuestion{
				ID:      "q3",
				Kind:    QuestionRankedOrder,
				Options: []QuestionOption{{Value: "x"}, {Value: "y"}},
				Default: []string{"y", "x"},
			},
			want: OrderAnswer("y", "x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InitialAnswer(tt.question)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Scalar, got.Scalar)
			assert.Equal(t, len(tt.want.Values), len(got.Values))
			for i := range tt.want.Values {
				assert.Equal(t, tt.want.Values[i], got.Values[i])
			}
		})
	}
}

func TestAnswer_Toggle(t *testing.T) {
	a := SetAnswer("a")

	a.Toggle("b")
	assert.True(t, a.Contains("b"))

	// Toggling twice restores the original set.
	a.Toggle("b")
	assert.False(t, a.Contains("b"))
	assert.True(t, a.Contains("a"))

	// Toggle is exclusive to multi-choice answers.
	s := ScalarAnswer("a")
	s.Toggle("b")
	assert.Equal(t, "a", s.Scalar)
	assert.Empty(t, s.Values)
}

func TestAnswer_Select(t *testing.T) {
	a := ScalarAnswer("weekly")
	a.Select("monthly")
	assert.Equal(t, "monthly", a.Scalar)

	m := SetAnswer("a")
	m.Select("b")
	assert.Empty(t, m.Scalar)
}

func TestAnswer_Move(t *testing.T) {
	tests := []struct {
		name  string
		index int
		delta int
		want  []string
	}{
		{name: "move middle up", index: 1, delta: -1, want: []string{"y", "x", "z"}},
		{name: "move middle down", index: 1, delta: 1, want: []string{"x", "z", "y"}},
		{name: "move first up is a no-op", index: 0, delta: -1, want: []string{"x", "y", "z"}},
		{name: "move last down is a no-op", index: 2, delta: 1, want: []string{"x", "y", "z"}},
		{name: "out of range index is a no-op", index: 5, delta: -1, want: []string{"x", "y", "z"}},
		{name: "jump of two is a no-op", index: 0, delta: 2, want: []string{"x", "y", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := OrderAnswer("x", "y", "z")
			a.Move(tt.index, tt.delta)
			assert.Equal(t, tt.want, a.Values)
		})
	}

	// Ordering edits never apply to scalar answers.
	s := ScalarAnswer("x")
	s.Move(0, 1)
	assert.Equal(t, "x", s.Scalar)
}

func TestFocusCandidate_HasUsableData(t *testing.T) {
	assert.True(t, FocusCandidate{Trust: TrustHigh}.HasUsableData())
	assert.True(t, FocusCandidate{Trust: TrustLow}.HasUsableData())
	assert.True(t, FocusCandidate{}.HasUsableData())
	assert.False(t, FocusCandidate{Trust: TrustNone}.HasUsableData())
}
