package grading

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicOracle_Deterministic(t *testing.T) {
	ctx := context.Background()
	text := "I read a book about a brave character who saved the story world."
	o := HeuristicOracle{}

	a, err := o.Grade(ctx, text, Context{GradeLevel: "K2", Subject: "English"})
	require.NoError(t, err)
	b, err := o.Grade(ctx, text, Context{GradeLevel: "K2", Subject: "English"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.GreaterOrEqual(t, a.RawScore, 20.0)
	assert.LessOrEqual(t, a.AdjustedScore, 100.0)
	assert.GreaterOrEqual(t, a.AdjustedScore, a.RawScore, "early grades get leniency")
	assert.Equal(t, 0.85, a.Confidence)
	assert.Equal(t, 75.0, a.Criteria["vocabulary_usage"])
	assert.Equal(t, 80.0, a.Criteria["structure"])
	c := a.Criteria["creativity"]
	assert.True(t, c >= 60 && c < 100)
}

func TestHeuristicOracle_NoLeniencyForOlderGrades(t *testing.T) {
	res, err := HeuristicOracle{}.Grade(context.Background(), "short answer", Context{GradeLevel: "P5"})
	require.NoError(t, err)
	assert.Equal(t, res.RawScore, res.AdjustedScore)
	assert.Equal(t, 50.0, res.Criteria["vocabulary_usage"])
	assert.Contains(t, res.Suggestions, "Try writing longer sentences")
	assert.Contains(t, res.Suggestions, "Review the assignment instructions carefully.")
}

func TestHeuristicOracle_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HeuristicOracle{}.Grade(ctx, "x", Context{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFeedbackTiers(t *testing.T) {
	assert.True(t, strings.HasPrefix(feedbackFor(95, "Math"), "Excellent work! Your math"))
	assert.True(t, strings.HasPrefix(feedbackFor(80, "Math"), "Great job!"))
	assert.True(t, strings.HasPrefix(feedbackFor(70, "Math"), "Good effort!"))
	assert.True(t, strings.HasPrefix(feedbackFor(60, "Math"), "Nice try!"))
	assert.Equal(t, "Keep practicing! Math can be challenging, but you're learning. Ask for help if you need it.", feedbackFor(59.9, "Math"))
}

func TestSuggestions(t *testing.T) {
	assert.Equal(t, "Continue practicing and exploring new vocabulary words!", suggestionsFor(50, 90, "K1"))
	assert.Equal(t,
		"Practice reading picture books together with your parent. Try drawing a picture to go with your story.",
		suggestionsFor(50, 40, "K1"))
}
