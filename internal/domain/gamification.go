package domain

// PointsAwarded summarizes the outcome of a resolution award.
type PointsAwarded struct {
	BasePoints  int      `json:"base_points"`
	BonusPoints int      `json:"bonus_points"`
	TotalPoints int      `json:"total_points"`
	NewBadges   []string `json:"new_badges"`
}

// LeaderboardEntry is one ranked row of the staff leaderboard.
type LeaderboardEntry struct {
	Rank               int      `json:"rank"`
	StaffID            string   `json:"staff_id"`
	Name               string   `json:"name"`
	TotalPoints        int      `json:"total_points"`
	ComplaintsResolved int      `json:"complaints_resolved"`
	CustomerRating     *float64 `json:"customer_rating,omitempty"`
	Badges             []string `json:"badges"`
}

// StaffStats is the detailed per-staff performance view.
type StaffStats struct {
	TotalPoints        int                `json:"total_points"`
	Rank               int                `json:"rank"`
	TotalStaff         int                `json:"total_staff"`
	ComplaintsResolved int                `json:"complaints_resolved"`
	CustomerRating     *float64           `json:"customer_rating,omitempty"`
	Badges             []string           `json:"badges"`
	NextBadgeProgress  map[string]float64 `json:"next_badge_progress"`
}
