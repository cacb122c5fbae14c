package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatorAgent_Evaluate_HighFollowerHighEngagementGradesA(t *testing.T) {
	a := &CreatorAgent{}
	result := a.Evaluate(context.Background(), CreatorRequest{
		Platform: "instagram",
		Handle:   "creator1",
		Metrics: &CreatorMetrics{
			Followers:      250000,
			EngagementRate: 3.4,
			Posts30d:       20,
			BrandFit:       0.7,
		},
	})

	require.True(t, result.Success)
	assert.Equal(t, GradeA, result.Grade)
	assert.Equal(t, DecisionAccept, result.Decision)
	assert.InDelta(t, 80.5, result.Score, 0.1)
	assert.Empty(t, result.Risks)
	assert.NotEmpty(t, result.Report)
}

func TestCreatorAgent_Evaluate_HighReportsAlwaysRejects(t *testing.T) {
	a := &CreatorAgent{}
	result := a.Evaluate(context.Background(), CreatorRequest{
		Platform: "tiktok",
		Handle:   "risky",
		Metrics: &CreatorMetrics{
			Followers:      500000,
			EngagementRate: 5,
			Posts30d:       30,
			BrandFit:       0.9,
			Reports90d:     5,
		},
	})

	assert.Contains(t, result.Tags, "high_reports")
	assert.Equal(t, DecisionReject, result.Decision)
}

func TestCreatorAgent_Evaluate_LowActivityHoldsBelowThreshold(t *testing.T) {
	a := &CreatorAgent{}
	result := a.Evaluate(context.Background(), CreatorRequest{
		Platform: "youtube",
		Handle:   "newish",
		Metrics: &CreatorMetrics{
			Followers:      300000,
			EngagementRate: 3.0,
			Posts30d:       2,
			BrandFit:       0.4,
		},
	})

	assert.Contains(t, result.Tags, "low_activity")
	if result.Score < 70 {
		assert.Equal(t, DecisionHold, result.Decision)
	}
}

func TestCreatorAgent_Evaluate_NoMetricsNoProfileURLUsesZeroedMetrics(t *testing.T) {
	a := &CreatorAgent{}
	result := a.Evaluate(context.Background(), CreatorRequest{Platform: "x", Handle: "empty"})

	require.True(t, result.Success)
	assert.Equal(t, GradeC, result.Grade)
	assert.Equal(t, DecisionReject, result.Decision)
}

func TestParseFollowerCount(t *testing.T) {
	assert.Equal(t, float64(1500), parseFollowerCount("1.5", "k"))
	assert.Equal(t, float64(2_000_000), parseFollowerCount("2", "m"))
	assert.Equal(t, float64(42), parseFollowerCount("42", ""))
}
