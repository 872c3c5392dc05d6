package dto

import "github.com/spec-kit/complaint-service/internal/domain"

// PointsAwardedResponse reports the outcome of a resolution award.
type PointsAwardedResponse struct {
	BasePoints  int      `json:"base_points"`
	BonusPoints int      `json:"bonus_points"`
	TotalPoints int      `json:"total_points"`
	NewBadges   []string `json:"new_badges,omitempty"`
}

// NewPointsAwardedResponse maps a domain award.
func NewPointsAwardedResponse(p *domain.PointsAwarded) *PointsAwardedResponse {
	if p == nil {
		return nil
	}
	return &PointsAwardedResponse{
		BasePoints:  p.BasePoints,
		BonusPoints: p.BonusPoints,
		TotalPoints: p.TotalPoints,
		NewBadges:   p.NewBadges,
	}
}
