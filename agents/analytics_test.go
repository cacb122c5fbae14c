package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsAgent_LearningProgressGradesByThreshold(t *testing.T) {
	a := &AnalyticsAgent{}
	result, err := a.Run("user1", ReportLearningProgress)
	require.NoError(t, err)
	assert.Equal(t, ReportLearningProgress, result.ReportType)
	assert.Equal(t, "good", result.Grade) // sample source returns 62
}

func TestAnalyticsAgent_EngagementComposite(t *testing.T) {
	a := &AnalyticsAgent{Source: fixedAnalyticsSource{
		engagement: EngagementMetrics{LoginFrequency: 1, Participation: 1, Interaction: 1},
	}}
	result, err := a.Run("user1", ReportEngagement)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Composite, 0.001)
	assert.Equal(t, "rising", result.Trend)
}

func TestAnalyticsAgent_PerformanceGradeF(t *testing.T) {
	a := &AnalyticsAgent{Source: fixedAnalyticsSource{
		performance: PerformanceMetrics{AvgTestScore: 40},
	}}
	result, err := a.Run("user1", ReportPerformance)
	require.NoError(t, err)
	assert.Equal(t, "F", result.Grade)
}

type fixedAnalyticsSource struct {
	learning    LearningMetrics
	engagement  EngagementMetrics
	performance PerformanceMetrics
}

func (f fixedAnalyticsSource) Learning(string) (LearningMetrics, error)     { return f.learning, nil }
func (f fixedAnalyticsSource) Engagement(string) (EngagementMetrics, error) { return f.engagement, nil }
func (f fixedAnalyticsSource) Performance(string) (PerformanceMetrics, error) {
	return f.performance, nil
}
