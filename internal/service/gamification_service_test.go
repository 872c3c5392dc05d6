package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// fakeLeaderboardCache records cache traffic for assertions.
type fakeLeaderboardCache struct {
	entries     map[int][]domain.LeaderboardEntry
	gets        int
	hits        int
	sets        int
	invalidates int
}

func newFakeLeaderboardCache() *fakeLeaderboardCache {
	return &fakeLeaderboardCache{entries: make(map[int][]domain.LeaderboardEntry)}
}

func (f *fakeLeaderboardCache) Get(_ context.Context, limit int) ([]domain.LeaderboardEntry, bool) {
	f.gets++
	entries, ok := f.entries[limit]
	if ok {
		f.hits++
	}
	return entries, ok
}

func (f *fakeLeaderboardCache) Set(_ context.Context, limit int, entries []domain.LeaderboardEntry, _ time.Duration) {
	f.sets++
	f.entries[limit] = entries
}

func (f *fakeLeaderboardCache) Invalidate(_ context.Context) {
	f.invalidates++
	f.entries = make(map[int][]domain.LeaderboardEntry)
}

func newTestGamification(t *testing.T) (*GamificationService, *repository.MemoryUserRepository, *fakeLeaderboardCache) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	cache := newFakeLeaderboardCache()
	svc := NewGamificationService(GamificationDependencies{
		UserRepo: users,
		Cache:    cache,
	})
	return svc, users, cache
}

func seedStaff(t *testing.T, users *repository.MemoryUserRepository, name string, points, resolved int, badges ...string) *domain.User {
	t.Helper()
	staff := &domain.User{
		Name:               name,
		Email:              name + "@example.com",
		Role:               domain.RoleStaff,
		TotalPoints:        points,
		ComplaintsResolved: resolved,
		Badges:             badges,
	}
	if err := users.Create(context.Background(), staff); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return staff
}

func TestBasePoints(t *testing.T) {
	cases := map[domain.ComplaintPriority]int{
		domain.ComplaintPriorityCritical: 100,
		domain.ComplaintPriorityHigh:     50,
		domain.ComplaintPriorityMedium:   30,
		domain.ComplaintPriorityLow:      10,
	}
	for priority, want := range cases {
		if got := BasePoints(priority); got != want {
			t.Errorf("BasePoints(%s) = %d, want %d", priority, got, want)
		}
	}
}

func TestAwardResolutionWithinSLA(t *testing.T) {
	svc, users, cache := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 0, 0)

	award, err := svc.AwardResolution(context.Background(), staff.ID, domain.ComplaintPriorityCritical, true)
	if err != nil {
		t.Fatalf("AwardResolution: %v", err)
	}
	if award.BasePoints != 100 || award.BonusPoints != 25 || award.TotalPoints != 125 {
		t.Fatalf("award = %+v, want 100/25/125", award)
	}

	updated, err := users.GetByID(context.Background(), staff.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.TotalPoints != 125 || updated.ComplaintsResolved != 1 {
		t.Fatalf("profile = %d points, %d resolved", updated.TotalPoints, updated.ComplaintsResolved)
	}
	if cache.invalidates == 0 {
		t.Fatal("leaderboard cache not invalidated")
	}
}

func TestAwardResolutionOutsideSLA(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 0, 0)

	award, err := svc.AwardResolution(context.Background(), staff.ID, domain.ComplaintPriorityLow, false)
	if err != nil {
		t.Fatalf("AwardResolution: %v", err)
	}
	if award.BasePoints != 10 || award.BonusPoints != 0 || award.TotalPoints != 10 {
		t.Fatalf("award = %+v, want 10/0/10", award)
	}
}

func TestAwardResolutionUnknownStaff(t *testing.T) {
	svc, _, _ := newTestGamification(t)

	_, err := svc.AwardResolution(context.Background(), "missing", domain.ComplaintPriorityLow, true)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestCenturyClubAwardedAtHundredthResolution(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 5000, 99, domain.BadgeQuickResolver)

	award, err := svc.AwardResolution(context.Background(), staff.ID, domain.ComplaintPriorityLow, false)
	if err != nil {
		t.Fatalf("AwardResolution: %v", err)
	}
	if len(award.NewBadges) != 1 || award.NewBadges[0] != domain.BadgeCenturyClub {
		t.Fatalf("new badges = %v, want [CENTURY_CLUB]", award.NewBadges)
	}

	// The next resolution must not re-award it.
	again, err := svc.AwardResolution(context.Background(), staff.ID, domain.ComplaintPriorityLow, false)
	if err != nil {
		t.Fatalf("AwardResolution: %v", err)
	}
	if len(again.NewBadges) != 0 {
		t.Fatalf("badges re-awarded: %v", again.NewBadges)
	}
}

func TestEvaluateBadgesRatingThresholds(t *testing.T) {
	rating := 4.6
	profile := domain.User{ComplaintsResolved: 30, CustomerRating: &rating}
	badges := EvaluateBadges(profile)
	want := []string{domain.BadgeQualityExpert, domain.BadgeQuickResolver}
	if len(badges) != len(want) {
		t.Fatalf("badges = %v, want %v", badges, want)
	}
	for i := range want {
		if badges[i] != want[i] {
			t.Fatalf("badges = %v, want %v", badges, want)
		}
	}

	rating = 4.9
	profile.CustomerRating = &rating
	badges = EvaluateBadges(profile)
	if len(badges) != 3 || badges[2] != domain.BadgeCustomerChampion {
		t.Fatalf("badges = %v, want champion last", badges)
	}
}

func TestAwardRatingFiveStars(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 0, 2)

	points, err := svc.AwardRating(context.Background(), staff.ID, 5)
	if err != nil {
		t.Fatalf("AwardRating: %v", err)
	}
	if points != 40 {
		t.Fatalf("points = %d, want 40", points)
	}

	updated, _ := users.GetByID(context.Background(), staff.ID)
	if updated.CustomerRating == nil {
		t.Fatal("rating average not recorded")
	}
	// First rating over two resolutions: (0*1 + 5) / 2.
	if *updated.CustomerRating != 2.5 {
		t.Fatalf("average = %v, want 2.5", *updated.CustomerRating)
	}
}

func TestAwardRatingLowRatingAwardsNothing(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 10, 5)

	points, err := svc.AwardRating(context.Background(), staff.ID, 3)
	if err != nil {
		t.Fatalf("AwardRating: %v", err)
	}
	if points != 0 {
		t.Fatalf("points = %d, want 0", points)
	}
	updated, _ := users.GetByID(context.Background(), staff.ID)
	if updated.TotalPoints != 10 || updated.CustomerRating != nil {
		t.Fatal("low rating must not touch the profile")
	}
}

func TestAwardRatingValidatesBounds(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 0, 1)

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.AwardRating(context.Background(), staff.ID, rating); err == nil {
			t.Fatalf("rating %d accepted", rating)
		}
	}
}

func TestAwardRatingSkipsAverageWithoutResolutions(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	staff := seedStaff(t, users, "ada", 0, 0)

	points, err := svc.AwardRating(context.Background(), staff.ID, 5)
	if err != nil {
		t.Fatalf("AwardRating: %v", err)
	}
	if points != 40 {
		t.Fatalf("points = %d, want 40", points)
	}
	updated, _ := users.GetByID(context.Background(), staff.ID)
	if updated.CustomerRating != nil {
		t.Fatal("average must stay unset without resolutions")
	}
}

func TestLeaderboardRanksAndCache(t *testing.T) {
	svc, users, cache := newTestGamification(t)
	seedStaff(t, users, "first", 300, 10)
	seedStaff(t, users, "second", 200, 8)
	seedStaff(t, users, "third", 100, 3)

	entries, err := svc.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Rank != 1 || entries[0].Name != "first" {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	if entries[1].Rank != 2 || entries[1].Name != "second" {
		t.Fatalf("entry 1 = %+v", entries[1])
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	if _, err := svc.Leaderboard(context.Background(), 2); err != nil {
		t.Fatalf("Leaderboard (cached): %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", cache.hits)
	}
}

func TestLeaderboardTiesBreakByID(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	a := seedStaff(t, users, "a", 100, 1)
	b := seedStaff(t, users, "b", 100, 1)

	entries, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	first, second := a.ID, b.ID
	if second < first {
		first, second = second, first
	}
	if entries[0].StaffID != first || entries[1].StaffID != second {
		t.Fatalf("tie order = %s, %s", entries[0].StaffID, entries[1].StaffID)
	}
}

func TestStaffStats(t *testing.T) {
	svc, users, _ := newTestGamification(t)
	seedStaff(t, users, "leader", 500, 30, domain.BadgeQuickResolver)
	staff := seedStaff(t, users, "runner", 250, 50)

	stats, err := svc.StaffStats(context.Background(), staff.ID)
	if err != nil {
		t.Fatalf("StaffStats: %v", err)
	}
	if stats.Rank != 2 || stats.TotalStaff != 2 {
		t.Fatalf("rank = %d of %d, want 2 of 2", stats.Rank, stats.TotalStaff)
	}
	if got := stats.NextBadgeProgress[domain.BadgeCenturyClub]; got != 50 {
		t.Fatalf("century progress = %v, want 50", got)
	}
	// Quick resolver threshold already exceeded but badge not yet held, so
	// progress is capped.
	if got := stats.NextBadgeProgress[domain.BadgeQuickResolver]; got != 100 {
		t.Fatalf("quick resolver progress = %v, want 100", got)
	}
}
