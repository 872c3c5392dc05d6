package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/cache"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// Point values for resolution and rating events.
const (
	pointsResolveCritical = 100
	pointsResolveHigh     = 50
	pointsResolveMedium   = 30
	pointsResolveLow      = 10
	pointsWithinSLABonus  = 25
	pointsFiveStarRating  = 40
)

// GamificationService awards points and badges and maintains the
// leaderboard.
type GamificationService struct {
	users      repository.UserRepository
	cache      cache.LeaderboardCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cacheTTL   time.Duration
	staffLocks *keyedMutex
}

// GamificationDependencies bundles collaborators.
type GamificationDependencies struct {
	UserRepo   repository.UserRepository
	Cache      cache.LeaderboardCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// NewGamificationService constructs the service.
func NewGamificationService(deps GamificationDependencies) *GamificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &GamificationService{
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cacheTTL:   ttl,
		staffLocks: newKeyedMutex(),
	}
}

// BasePoints maps a priority to its resolution point value.
func BasePoints(priority domain.ComplaintPriority) int {
	switch priority {
	case domain.ComplaintPriorityCritical:
		return pointsResolveCritical
	case domain.ComplaintPriorityHigh:
		return pointsResolveHigh
	case domain.ComplaintPriorityMedium:
		return pointsResolveMedium
	case domain.ComplaintPriorityLow:
		return pointsResolveLow
	}
	return 0
}

// EvaluateBadges returns the badges the profile snapshot has newly earned.
// It is pure: already-held badges are never re-awarded and the snapshot is
// not mutated. Catalog order is the award order.
func EvaluateBadges(profile domain.User) []string {
	newBadges := []string{}
	rating := 0.0
	if profile.CustomerRating != nil {
		rating = *profile.CustomerRating
	}

	for _, badge := range domain.BadgeCatalog {
		if profile.HasBadge(badge.ID) {
			continue
		}
		earned := false
		switch badge.ID {
		case domain.BadgeCenturyClub:
			earned = profile.ComplaintsResolved >= 100
		case domain.BadgeQualityExpert:
			earned = profile.CustomerRating != nil && rating >= 4.5 && profile.ComplaintsResolved >= 10
		case domain.BadgeQuickResolver:
			earned = profile.ComplaintsResolved >= 25
		case domain.BadgeCustomerChampion:
			earned = profile.CustomerRating != nil && rating >= 4.8 && profile.ComplaintsResolved >= 20
		}
		if earned {
			newBadges = append(newBadges, badge.ID)
		}
	}
	return newBadges
}

// AwardResolution credits a staff member for resolving a complaint. Fails
// with NotFound for unknown staff ids; the profile update is serialized per
// staff id.
func (s *GamificationService) AwardResolution(ctx context.Context, staffID string, priority domain.ComplaintPriority, withinSLA bool) (*domain.PointsAwarded, error) {
	unlock := s.staffLocks.Lock(staffID)
	defer unlock()

	staff, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}

	basePoints := BasePoints(priority)
	bonusPoints := 0
	if withinSLA {
		bonusPoints = pointsWithinSLABonus
	}

	staff.TotalPoints += basePoints + bonusPoints
	staff.ComplaintsResolved++

	newBadges := EvaluateBadges(*staff)
	staff.Badges = append(staff.Badges, newBadges...)

	if err := s.users.Update(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateLeaderboard(ctx)

	s.logger.Info("awarded resolution points",
		zap.String("staff_id", staffID),
		zap.String("priority", string(priority)),
		zap.Bool("within_sla", withinSLA),
		zap.Int("points", basePoints+bonusPoints),
		zap.Strings("new_badges", newBadges),
	)
	s.publishPointsEvent(ctx, staffID, basePoints, bonusPoints, newBadges)

	return &domain.PointsAwarded{
		BasePoints:  basePoints,
		BonusPoints: bonusPoints,
		TotalPoints: basePoints + bonusPoints,
		NewBadges:   newBadges,
	}, nil
}

// AwardRating credits a staff member for a customer rating and folds the
// rating into the running average. Ratings below 4 award no points and leave
// the profile untouched. A rating arriving before any resolution is counted
// for points but skipped for the average, since the running mean divides by
// the resolution count.
func (s *GamificationService) AwardRating(ctx context.Context, staffID string, rating int) (int, error) {
	if rating < 1 || rating > 5 {
		return 0, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	unlock := s.staffLocks.Lock(staffID)
	defer unlock()

	staff, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return 0, apperrors.MapError(err)
	}

	points := 0
	switch rating {
	case 5:
		points = pointsFiveStarRating
	case 4:
		points = pointsFiveStarRating / 2
	}
	if points == 0 {
		return 0, nil
	}

	staff.TotalPoints += points
	if staff.ComplaintsResolved > 0 {
		oldAvg := 0.0
		if staff.CustomerRating != nil {
			oldAvg = *staff.CustomerRating
		}
		total := float64(staff.ComplaintsResolved)
		newAvg := (oldAvg*(total-1) + float64(rating)) / total
		staff.CustomerRating = &newAvg
	}

	newBadges := EvaluateBadges(*staff)
	staff.Badges = append(staff.Badges, newBadges...)

	if err := s.users.Update(ctx, staff); err != nil {
		return 0, apperrors.MapError(err)
	}
	s.invalidateLeaderboard(ctx)

	s.logger.Info("awarded rating points",
		zap.String("staff_id", staffID),
		zap.Int("rating", rating),
		zap.Int("points", points),
	)
	s.publishPointsEvent(ctx, staffID, points, 0, newBadges)
	return points, nil
}

// Leaderboard returns the top staff ordered by total points descending, with
// 1-based ranks.
func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, limit); ok {
			return entries, nil
		}
	}

	staff, err := s.users.ListByRoleOrderedByPoints(ctx, domain.RoleStaff, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(staff))
	for i, member := range staff {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:               i + 1,
			StaffID:            member.ID,
			Name:               member.Name,
			TotalPoints:        member.TotalPoints,
			ComplaintsResolved: member.ComplaintsResolved,
			CustomerRating:     member.CustomerRating,
			Badges:             member.Badges,
		})
	}

	if s.cache != nil {
		s.cache.Set(ctx, limit, entries, s.cacheTTL)
	}
	return entries, nil
}

// StaffStats returns the detailed performance view for one staff member,
// including rank among all staff and progress toward the volume badges.
func (s *GamificationService) StaffStats(ctx context.Context, staffID string) (*domain.StaffStats, error) {
	staff, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}

	allStaff, err := s.users.ListByRoleOrderedByPoints(ctx, domain.RoleStaff, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rank := 1
	for _, member := range allStaff {
		if member.ID == staffID {
			break
		}
		rank++
	}

	return &domain.StaffStats{
		TotalPoints:        staff.TotalPoints,
		Rank:               rank,
		TotalStaff:         len(allStaff),
		ComplaintsResolved: staff.ComplaintsResolved,
		CustomerRating:     staff.CustomerRating,
		Badges:             staff.Badges,
		NextBadgeProgress:  nextBadgeProgress(staff),
	}, nil
}

// nextBadgeProgress reports completion percentages for the volume badges not
// yet held.
func nextBadgeProgress(staff *domain.User) map[string]float64 {
	progress := make(map[string]float64)
	for _, badge := range domain.BadgeCatalog {
		if badge.ID != domain.BadgeCenturyClub && badge.ID != domain.BadgeQuickResolver {
			continue
		}
		if staff.HasBadge(badge.ID) {
			continue
		}
		pct := float64(staff.ComplaintsResolved) / float64(badge.Threshold) * 100
		if pct > 100 {
			pct = 100
		}
		progress[badge.ID] = pct
	}
	return progress
}

func (s *GamificationService) invalidateLeaderboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *GamificationService) publishPointsEvent(ctx context.Context, staffID string, base, bonus int, newBadges []string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPointsAwarded,
		Timestamp: time.Now(),
		Payload: events.PointsAwardedPayload{
			StaffID:     staffID,
			BasePoints:  base,
			BonusPoints: bonus,
			NewBadges:   newBadges,
		},
	})
}
