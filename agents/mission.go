package agents

import (
	"fmt"
	"sort"
	"strings"
)

// MissionRequirement is the hard-filter and scoring envelope for one
// mission a creator is evaluated against.
type MissionRequirement struct {
	MissionID      string
	Platforms      []string // allow-list; empty means any platform
	MinFollowers   float64
	MinEngagement  float64 // fraction, e.g. 0.02
	MinPosts30d    float64
	MinGrade       Grade
	Categories     []string // allow-list; empty means any category
	RequiredTags   []string
	ExcludedTags   []string
	MaxReports90d  float64
	RewardType     string // "performance", "hybrid", "flat" — used by the risk-penalty step
}

// CreatorProfile is the mission agent's view of a creator: current
// standing plus assignment history, used for both hard filters and the
// composite score.
type CreatorProfile struct {
	Platform          string
	Followers         float64
	EngagementRate    float64 // fraction
	Posts30d          float64
	Grade             Grade
	Categories        []string
	Tags              []string
	Reports90d        float64
	CompletedMissions int
	AvgQuality        float64 // [0,1]
	ActiveMissions    int
	RecentTypes       []string
}

// MissionAssignment is one scored, recommended mission.
type MissionAssignment struct {
	MissionID string
	CreatorID string
	Status    string
	Score     float64
	Reasons   []string
	Metadata  map[string]any
}

var gradeRank = map[Grade]int{GradeC: 0, GradeB: 1, GradeA: 2, GradeS: 3}

// RecommendMissions applies the hard filters from each requirement, scores
// the survivors with the composite weighted model, and returns the top_k
// ordered by score descending.
func RecommendMissions(creatorID string, profile CreatorProfile, requirements []MissionRequirement, topK int) []MissionAssignment {
	var out []MissionAssignment
	for _, req := range requirements {
		if !passesHardFilters(profile, req) {
			continue
		}
		score, reasons := compositeScore(profile, req)
		out = append(out, MissionAssignment{
			MissionID: req.MissionID,
			CreatorID: creatorID,
			Status:    "RECOMMENDED",
			Score:     score,
			Reasons:   reasons,
			Metadata:  map[string]any{"reward_type": req.RewardType},
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

func passesHardFilters(p CreatorProfile, req MissionRequirement) bool {
	if len(req.Platforms) > 0 && !contains(req.Platforms, p.Platform) {
		return false
	}
	if p.Followers < req.MinFollowers {
		return false
	}
	if p.EngagementRate < req.MinEngagement {
		return false
	}
	if p.Posts30d < req.MinPosts30d {
		return false
	}
	if gradeRank[p.Grade] < gradeRank[req.MinGrade] {
		return false
	}
	if len(req.Categories) > 0 && !anyMatch(req.Categories, p.Categories) {
		return false
	}
	for _, excluded := range req.ExcludedTags {
		if contains(p.Tags, excluded) {
			return false
		}
	}
	if p.Reports90d > req.MaxReports90d && req.MaxReports90d > 0 {
		return false
	}
	return true
}

// compositeScore implements the weighted model: grade_fit 25%,
// engagement_fit 20%, category_fit 20%, history_fit 15%,
// availability_fit 10%, diversity_bonus 10%, then risk penalties applied
// after weighting and clamped to [0,100].
func compositeScore(p CreatorProfile, req MissionRequirement) (float64, []string) {
	var reasons []string

	gradeFit := 0.0
	if req.MinGrade != "" {
		gradeFit = float64(gradeRank[p.Grade]) / float64(max(1, gradeRank[req.MinGrade]))
		gradeFit = clamp(gradeFit, 0, 1)
	} else {
		gradeFit = 1
	}

	engagementFit := 0.0
	if req.MinEngagement > 0 {
		engagementFit = clamp(p.EngagementRate/req.MinEngagement, 0, 2) / 2
		reasons = append(reasons, fmt.Sprintf("참여율 %.2f%% (최소 %.2f%% 대비)", p.EngagementRate*100, req.MinEngagement*100))
	} else {
		engagementFit = 1
	}

	categoryFit := 0.0
	if len(req.Categories) > 0 && anyMatch(req.Categories, p.Categories) {
		categoryFit = 1
		reasons = append(reasons, "카테고리 일치")
	} else if len(req.RequiredTags) > 0 && anyMatch(req.RequiredTags, p.Tags) {
		categoryFit = 1
		reasons = append(reasons, "필수 태그 일치")
	} else if len(req.Categories) == 0 {
		categoryFit = 1
	}

	historyFit := clamp(float64(p.CompletedMissions)/10+p.AvgQuality*0.5, 0, 1)

	availabilityFit := 0.5
	if p.ActiveMissions < 3 {
		availabilityFit = 1.0
	}

	diversityBonus := 0.0
	if !containsAny(p.RecentTypes, req.RewardType) {
		diversityBonus = 1.0
	}

	weighted := gradeFit*0.25 + engagementFit*0.20 + categoryFit*0.20 + historyFit*0.15 + availabilityFit*0.10 + diversityBonus*0.10
	score := weighted * 100

	for _, tag := range p.Tags {
		switch tag {
		case "high_reports":
			score -= 20
			reasons = append(reasons, "고위험 신고 이력 감점")
		case "low_engagement":
			if req.RewardType == "performance" || req.RewardType == "hybrid" {
				score -= 10
				reasons = append(reasons, "참여율 저조 감점")
			}
		case "low_activity":
			score -= 5
			reasons = append(reasons, "활동량 저조 감점")
		}
	}

	return clamp(score, 0, 100), reasons
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func anyMatch(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}

func containsAny(list []string, target string) bool {
	if target == "" {
		return false
	}
	return contains(list, target)
}
