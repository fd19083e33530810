package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyScoreFullRange(t *testing.T) {
	for score := 0; score <= 25; score++ {
		want := SeverityLow
		switch {
		case score >= 16:
			want = SeverityHigh
		case score >= 9:
			want = SeverityMedium
		}
		assert.Equal(t, want, ClassifyScore(score), "score %d", score)
	}
}

func TestResidualScoreControlAdjustment(t *testing.T) {
	controls := []Control{
		{Name: "a", Owner: "o", Status: ControlEffective},
		{Name: "b", Owner: "o", Status: ControlEffective},
		{Name: "c", Owner: "o", Status: ControlIneffective},
		{Name: "d", Owner: "o", Status: ControlNeedsImprovement},
	}
	// 5*4 = 20, -2 effective, +1 ineffective
	assert.Equal(t, 19, ResidualScore(5, 4, controls))
}

func TestResidualScoreFloorsAtZero(t *testing.T) {
	controls := []Control{
		{Name: "a", Owner: "o", Status: ControlEffective},
		{Name: "b", Owner: "o", Status: ControlEffective},
	}
	assert.Equal(t, 0, ResidualScore(1, 1, controls))
}

func TestControlEnvironment(t *testing.T) {
	assert.Equal(t, "insufficient", ControlEnvironment(nil))

	strong := []Control{
		{Status: ControlEffective}, {Status: ControlEffective}, {Status: ControlEffective},
		{Status: ControlIneffective},
	}
	assert.Equal(t, "strong", ControlEnvironment(strong))

	moderate := []Control{
		{Status: ControlEffective}, {Status: ControlIneffective},
	}
	assert.Equal(t, "moderate", ControlEnvironment(moderate))

	weak := []Control{
		{Status: ControlIneffective}, {Status: ControlIneffective}, {Status: ControlEffective},
	}
	assert.Equal(t, "weak", ControlEnvironment(weak))
}
