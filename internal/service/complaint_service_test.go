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

// failingUserRepo breaks profile updates to exercise scoring failures.
type failingUserRepo struct {
	*repository.MemoryUserRepository
}

func (r *failingUserRepo) Update(context.Context, *domain.User) error {
	return errors.New("user store unavailable")
}

type complaintFixture struct {
	svc        *ComplaintService
	complaints *repository.MemoryComplaintRepository
	users      repository.UserRepository
	clock      *fakeClock
	customer   *domain.User
	staff      *domain.User
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newComplaintFixture(t *testing.T, users repository.UserRepository) *complaintFixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	complaints := repository.NewMemoryComplaintRepository()
	complaints.SetClock(clock.Now)

	ctx := context.Background()
	customer := &domain.User{Name: "carol", Email: "carol@example.com", Role: domain.RoleCustomer}
	staff := &domain.User{Name: "stan", Email: "stan@example.com", Role: domain.RoleStaff}
	if err := users.Create(ctx, customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := users.Create(ctx, staff); err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	gamification := NewGamificationService(GamificationDependencies{UserRepo: users})
	svc := NewComplaintService(ComplaintDependencies{
		ComplaintRepo: complaints,
		UserRepo:      users,
		Gamification:  gamification,
		Clock:         clock.Now,
	})
	return &complaintFixture{
		svc:        svc,
		complaints: complaints,
		users:      users,
		clock:      clock,
		customer:   customer,
		staff:      staff,
	}
}

func (f *complaintFixture) create(t *testing.T, priority domain.ComplaintPriority, description string) *domain.Complaint {
	t.Helper()
	complaint, err := f.svc.Create(context.Background(), f.customer.ID, ComplaintCreateInput{
		Title:       "cannot log in",
		Description: description,
		Priority:    priority,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return complaint
}

func TestCreateComplaint(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityCritical, "This is absolutely terrible and a complete scam")

	if complaint.Status != domain.ComplaintStatusNew {
		t.Fatalf("status = %s, want NEW", complaint.Status)
	}
	if complaint.Sentiment != domain.SentimentAngry {
		t.Fatalf("sentiment = %s, want ANGRY", complaint.Sentiment)
	}
	wantDeadline := f.clock.Now().Add(2 * time.Hour)
	if !complaint.SLADeadline.Equal(wantDeadline) {
		t.Fatalf("deadline = %v, want %v", complaint.SLADeadline, wantDeadline)
	}
}

func TestCreateComplaintValidation(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())

	_, err := f.svc.Create(context.Background(), f.customer.ID, ComplaintCreateInput{Title: " ", Description: ""})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	_, err = f.svc.Create(context.Background(), "missing", ComplaintCreateInput{Title: "t", Description: "d"})
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestTransitionMatrix(t *testing.T) {
	all := []domain.ComplaintStatus{
		domain.ComplaintStatusNew,
		domain.ComplaintStatusAssigned,
		domain.ComplaintStatusInProgress,
		domain.ComplaintStatusEscalated,
		domain.ComplaintStatusResolved,
		domain.ComplaintStatusClosed,
	}
	valid := map[domain.ComplaintStatus]map[domain.ComplaintStatus]bool{
		domain.ComplaintStatusNew:        {domain.ComplaintStatusAssigned: true, domain.ComplaintStatusClosed: true},
		domain.ComplaintStatusAssigned:   {domain.ComplaintStatusInProgress: true, domain.ComplaintStatusEscalated: true, domain.ComplaintStatusClosed: true},
		domain.ComplaintStatusInProgress: {domain.ComplaintStatusResolved: true, domain.ComplaintStatusEscalated: true},
		domain.ComplaintStatusEscalated:  {domain.ComplaintStatusInProgress: true, domain.ComplaintStatusResolved: true},
		domain.ComplaintStatusResolved:   {domain.ComplaintStatusClosed: true},
		domain.ComplaintStatusClosed:     {},
	}

	for _, from := range all {
		for _, to := range all {
			if got, want := IsValidTransition(from, to), valid[from][to]; got != want {
				t.Errorf("IsValidTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTransitionRejectsInvalidEdge(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityMedium, "slow responses")

	_, err := f.svc.Transition(context.Background(), complaint.ID, domain.ComplaintStatusResolved)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "INVALID_TRANSITION" {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}

	// The rejected transition must not mutate the complaint.
	stored, err := f.svc.GetByID(context.Background(), complaint.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.ComplaintStatusNew {
		t.Fatalf("status = %s, want NEW", stored.Status)
	}
}

func TestAssign(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	assigned, err := f.svc.Assign(context.Background(), complaint.ID, f.staff.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.Status != domain.ComplaintStatusAssigned {
		t.Fatalf("status = %s, want ASSIGNED", assigned.Status)
	}
	if assigned.AssignedStaffID == nil || *assigned.AssignedStaffID != f.staff.ID {
		t.Fatalf("assignee = %v, want %s", assigned.AssignedStaffID, f.staff.ID)
	}
}

func TestAssignRejectsCustomers(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	_, err := f.svc.Assign(context.Background(), complaint.ID, f.customer.ID)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "INVALID_ROLE" {
		t.Fatalf("err = %v, want INVALID_ROLE", err)
	}

	_, err = f.svc.Assign(context.Background(), complaint.ID, "missing")
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestReassignOverridesStatus(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	if _, err := f.svc.Assign(context.Background(), complaint.ID, f.staff.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), complaint.ID, domain.ComplaintStatusEscalated); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	// Reassignment re-arms an escalated complaint at ASSIGNED.
	reassigned, err := f.svc.Assign(context.Background(), complaint.ID, f.staff.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if reassigned.Status != domain.ComplaintStatusAssigned {
		t.Fatalf("status = %s, want ASSIGNED", reassigned.Status)
	}
}

func resolvePath(t *testing.T, f *complaintFixture, complaintID string) *TransitionResult {
	t.Helper()
	if _, err := f.svc.Assign(context.Background(), complaintID, f.staff.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), complaintID, domain.ComplaintStatusInProgress); err != nil {
		t.Fatalf("Transition to IN_PROGRESS: %v", err)
	}
	result, err := f.svc.Transition(context.Background(), complaintID, domain.ComplaintStatusResolved)
	if err != nil {
		t.Fatalf("Transition to RESOLVED: %v", err)
	}
	return result
}

func TestResolveWithinSLAAwardsBonus(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	f.clock.Advance(time.Hour)
	result := resolvePath(t, f, complaint.ID)

	if result.Scoring == nil {
		t.Fatal("expected a scoring result")
	}
	if result.Scoring.BasePoints != 50 || result.Scoring.BonusPoints != 25 {
		t.Fatalf("scoring = %+v, want 50/25", result.Scoring)
	}

	staff, _ := f.users.GetByID(context.Background(), f.staff.ID)
	if staff.TotalPoints != 75 || staff.ComplaintsResolved != 1 {
		t.Fatalf("profile = %d points, %d resolved", staff.TotalPoints, staff.ComplaintsResolved)
	}
}

func TestResolveAfterDeadlineSkipsBonus(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityCritical, "total outage")

	f.clock.Advance(3 * time.Hour)
	result := resolvePath(t, f, complaint.ID)

	if result.Scoring == nil {
		t.Fatal("expected a scoring result")
	}
	if result.Scoring.BasePoints != 100 || result.Scoring.BonusPoints != 0 {
		t.Fatalf("scoring = %+v, want 100/0", result.Scoring)
	}
}

func TestResolveUnassignedSkipsScoring(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityLow, "minor issue")

	// Force the complaint into a resolvable state without an assignee.
	stored, _ := f.complaints.GetByID(context.Background(), complaint.ID)
	stored.Status = domain.ComplaintStatusInProgress
	if err := f.complaints.Update(context.Background(), stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	result, err := f.svc.Transition(context.Background(), complaint.ID, domain.ComplaintStatusResolved)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if result.Scoring != nil || result.ScoringErr != nil {
		t.Fatalf("unexpected scoring: %+v / %v", result.Scoring, result.ScoringErr)
	}
}

func TestScoringFailureDoesNotRollBackTransition(t *testing.T) {
	users := &failingUserRepo{repository.NewMemoryUserRepository()}
	f := newComplaintFixture(t, users)
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	result := resolvePath(t, f, complaint.ID)
	if result.ScoringErr == nil {
		t.Fatal("expected a scoring error")
	}
	if result.Complaint.Status != domain.ComplaintStatusResolved {
		t.Fatalf("status = %s, want RESOLVED", result.Complaint.Status)
	}

	stored, err := f.svc.GetByID(context.Background(), complaint.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.ComplaintStatusResolved {
		t.Fatalf("persisted status = %s, want RESOLVED", stored.Status)
	}
}

func TestRate(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	_, err := f.svc.Rate(context.Background(), complaint.ID, 5)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("rating an open complaint: err = %v, want CONFLICT", err)
	}

	resolvePath(t, f, complaint.ID)
	points, err := f.svc.Rate(context.Background(), complaint.ID, 5)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if points != 40 {
		t.Fatalf("points = %d, want 40", points)
	}
}

func TestDashboardStats(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	f.create(t, domain.ComplaintPriorityCritical, "total outage")
	open := f.create(t, domain.ComplaintPriorityLow, "minor issue")
	if _, err := f.svc.Assign(context.Background(), open.ID, f.staff.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// Three hours in, the critical complaint has breached its 2h window.
	stats, err := f.svc.DashboardStats(context.Background(), f.clock.Now().Add(3*time.Hour), 2*time.Hour)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats["totalComplaints"] != 2 {
		t.Fatalf("total = %v, want 2", stats["totalComplaints"])
	}
	if stats["slaBreached"] != 1 {
		t.Fatalf("breached = %v, want 1", stats["slaBreached"])
	}
	byStatus := stats["byStatus"].(map[domain.ComplaintStatus]int)
	if byStatus[domain.ComplaintStatusNew] != 1 || byStatus[domain.ComplaintStatusAssigned] != 1 {
		t.Fatalf("byStatus = %v", byStatus)
	}
	if stats["avgResolutionHours"] != 0.0 {
		t.Fatalf("avgResolutionHours = %v, want 0 with nothing resolved", stats["avgResolutionHours"])
	}
}

func TestDashboardStatsAvgResolutionHours(t *testing.T) {
	f := newComplaintFixture(t, repository.NewMemoryUserRepository())
	complaint := f.create(t, domain.ComplaintPriorityHigh, "waiting for days")

	f.clock.Advance(2 * time.Hour)
	resolvePath(t, f, complaint.ID)

	stats, err := f.svc.DashboardStats(context.Background(), f.clock.Now(), 2*time.Hour)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats["avgResolutionHours"] != 2.0 {
		t.Fatalf("avgResolutionHours = %v, want 2", stats["avgResolutionHours"])
	}
}
