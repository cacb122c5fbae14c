package agents

import "fmt"

// ReportType selects which analytics report generator runs.
type ReportType string

const (
	ReportLearningProgress ReportType = "learning_progress"
	ReportEngagement       ReportType = "engagement"
	ReportPerformance      ReportType = "performance"
)

// LearningMetrics feeds the learning_progress report.
type LearningMetrics struct {
	CompletionRate float64 // percentage, 0-100
}

// EngagementMetrics feeds the engagement report.
type EngagementMetrics struct {
	LoginFrequency float64 // [0,1] normalized
	Participation  float64 // [0,1] normalized
	Interaction    float64 // [0,1] normalized
}

// PerformanceMetrics feeds the performance report.
type PerformanceMetrics struct {
	AvgTestScore float64 // 0-100
}

// AnalyticsSource reads domain metrics for a user; implementations read
// from a DB when available and fall back to deterministic samples when
// the backing store is unreachable (e.g. a SQLite file missing in a test
// environment), so reports stay deterministic when no database is
// calls for.
type AnalyticsSource interface {
	Learning(userID string) (LearningMetrics, error)
	Engagement(userID string) (EngagementMetrics, error)
	Performance(userID string) (PerformanceMetrics, error)
}

// SampleAnalyticsSource is the deterministic-sample fallback used when no
// real AnalyticsSource is wired.
type SampleAnalyticsSource struct{}

func (SampleAnalyticsSource) Learning(string) (LearningMetrics, error) {
	return LearningMetrics{CompletionRate: 62}, nil
}

func (SampleAnalyticsSource) Engagement(string) (EngagementMetrics, error) {
	return EngagementMetrics{LoginFrequency: 0.6, Participation: 0.5, Interaction: 0.4}, nil
}

func (SampleAnalyticsSource) Performance(string) (PerformanceMetrics, error) {
	return PerformanceMetrics{AvgTestScore: 78}, nil
}

// AnalyticsResult is the analytics agent's output field.
type AnalyticsResult struct {
	ReportType ReportType
	Grade      string
	Trend      string
	Composite  float64
	Details    map[string]any
}

// AnalyticsAgent selects one of three report generators and classifies the
// result against fixed thresholds.
type AnalyticsAgent struct {
	Source AnalyticsSource
}

func (a *AnalyticsAgent) source() AnalyticsSource {
	if a.Source != nil {
		return a.Source
	}
	return SampleAnalyticsSource{}
}

// Run produces the report named by reportType for userID.
func (a *AnalyticsAgent) Run(userID string, reportType ReportType) (AnalyticsResult, error) {
	switch reportType {
	case ReportEngagement:
		return a.engagementReport(userID)
	case ReportPerformance:
		return a.performanceReport(userID)
	default:
		return a.learningProgressReport(userID)
	}
}

func (a *AnalyticsAgent) learningProgressReport(userID string) (AnalyticsResult, error) {
	m, err := a.source().Learning(userID)
	if err != nil {
		return AnalyticsResult{}, err
	}
	var grade string
	switch {
	case m.CompletionRate >= 80:
		grade = "excellent"
	case m.CompletionRate >= 60:
		grade = "good"
	case m.CompletionRate >= 40:
		grade = "moderate"
	default:
		grade = "needs_improvement"
	}
	return AnalyticsResult{
		ReportType: ReportLearningProgress,
		Grade:      grade,
		Composite:  m.CompletionRate,
		Details:    map[string]any{"completion_rate": m.CompletionRate},
	}, nil
}

func (a *AnalyticsAgent) engagementReport(userID string) (AnalyticsResult, error) {
	m, err := a.source().Engagement(userID)
	if err != nil {
		return AnalyticsResult{}, err
	}
	composite := 0.3*m.LoginFrequency + 0.5*m.Participation + 0.2*m.Interaction
	trend := "stable"
	switch {
	case composite >= 0.7:
		trend = "rising"
	case composite < 0.3:
		trend = "declining"
	}
	return AnalyticsResult{
		ReportType: ReportEngagement,
		Trend:      trend,
		Composite:  composite,
		Details: map[string]any{
			"login_frequency": m.LoginFrequency,
			"participation":   m.Participation,
			"interaction":     m.Interaction,
		},
	}, nil
}

func (a *AnalyticsAgent) performanceReport(userID string) (AnalyticsResult, error) {
	m, err := a.source().Performance(userID)
	if err != nil {
		return AnalyticsResult{}, err
	}
	var grade string
	switch {
	case m.AvgTestScore >= 90:
		grade = "A"
	case m.AvgTestScore >= 80:
		grade = "B"
	case m.AvgTestScore >= 70:
		grade = "C"
	case m.AvgTestScore >= 60:
		grade = "D"
	default:
		grade = "F"
	}
	return AnalyticsResult{
		ReportType: ReportPerformance,
		Grade:      grade,
		Composite:  m.AvgTestScore,
		Details:    map[string]any{"avg_test_score": m.AvgTestScore, "summary": fmt.Sprintf("avg score %.1f -> grade %s", m.AvgTestScore, grade)},
	}, nil
}
