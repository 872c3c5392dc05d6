package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// MemoryComplaintRepository is an in-memory ComplaintRepository used by tests
// and local development. Not-found lookups return pgx.ErrNoRows so callers
// behave identically against both implementations.
type MemoryComplaintRepository struct {
	mu         sync.Mutex
	complaints map[string]domain.Complaint
	now        func() time.Time
}

// NewMemoryComplaintRepository builds an empty store.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{
		complaints: make(map[string]domain.Complaint),
		now:        time.Now,
	}
}

// SetClock overrides the timestamp source. Test helper.
func (r *MemoryComplaintRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := r.now()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	r.complaints[complaint.ID] = cloneComplaint(*complaint)
	return nil
}

func (r *MemoryComplaintRepository) Update(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.complaints[complaint.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// Lifecycle fields only; the escalation level is owned by Escalate.
	stored.Priority = complaint.Priority
	stored.Status = complaint.Status
	stored.AssignedStaffID = complaint.AssignedStaffID
	stored.UpdatedAt = r.now()
	r.complaints[complaint.ID] = stored
	complaint.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := cloneComplaint(stored)
	return &c, nil
}

func (r *MemoryComplaintRepository) ListWithFilter(_ context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := []domain.Complaint{}
	for _, c := range r.complaints {
		if filter.CustomerID != nil && c.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.AssignedStaffID != nil && (c.AssignedStaffID == nil || *c.AssignedStaffID != *filter.AssignedStaffID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, c.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, c.Priority) {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if term != "" && !strings.Contains(strings.ToLower(c.Title), term) &&
				!strings.Contains(strings.ToLower(c.Description), term) {
				continue
			}
		}
		matches = append(matches, cloneComplaint(c))
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return paginate(matches, filter.Limit, filter.Offset), nil
}

func (r *MemoryComplaintRepository) ListNonTerminal(_ context.Context) ([]domain.Complaint, error) {
	return r.listNonTerminal(func(domain.Complaint) bool { return true }), nil
}

func (r *MemoryComplaintRepository) ListNonTerminalDeadlineBefore(_ context.Context, t time.Time) ([]domain.Complaint, error) {
	return r.listNonTerminal(func(c domain.Complaint) bool {
		return c.SLADeadline.Before(t)
	}), nil
}

func (r *MemoryComplaintRepository) ListNonTerminalDeadlineBetween(_ context.Context, from, to time.Time) ([]domain.Complaint, error) {
	return r.listNonTerminal(func(c domain.Complaint) bool {
		return !c.SLADeadline.Before(from) && !c.SLADeadline.After(to)
	}), nil
}

func (r *MemoryComplaintRepository) listNonTerminal(match func(domain.Complaint) bool) []domain.Complaint {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := []domain.Complaint{}
	for _, c := range r.complaints {
		if c.Status.IsTerminal() || !match(c) {
			continue
		}
		matches = append(matches, cloneComplaint(c))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (r *MemoryComplaintRepository) Escalate(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.complaints[id]
	if !ok || stored.Status.IsTerminal() {
		return 0, pgx.ErrNoRows
	}
	stored.EscalationLevel++
	stored.Status = domain.ComplaintStatusEscalated
	stored.UpdatedAt = r.now()
	r.complaints[id] = stored
	return stored.EscalationLevel, nil
}

func (r *MemoryComplaintRepository) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ComplaintStatus]int)
	for _, c := range r.complaints {
		counts[c.Status]++
	}
	return counts, nil
}

func (r *MemoryComplaintRepository) CountByPriority(_ context.Context) (map[domain.ComplaintPriority]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ComplaintPriority]int)
	for _, c := range r.complaints {
		counts[c.Priority]++
	}
	return counts, nil
}

func (r *MemoryComplaintRepository) AverageResolutionHours(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0.0
	count := 0
	for _, c := range r.complaints {
		if !c.Status.IsTerminal() {
			continue
		}
		total += c.UpdatedAt.Sub(c.CreatedAt).Hours()
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

// MemoryUserRepository is an in-memory UserRepository used by tests and local
// development.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewMemoryUserRepository builds an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u := cloneUser(stored)
	return &u, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := cloneUser(u)
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) ListByRoleOrderedByPoints(_ context.Context, role domain.UserRole, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := []domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			matches = append(matches, cloneUser(u))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].TotalPoints == matches[j].TotalPoints {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].TotalPoints > matches[j].TotalPoints
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	if c.AssignedStaffID != nil {
		id := *c.AssignedStaffID
		c.AssignedStaffID = &id
	}
	return c
}

func cloneUser(u domain.User) domain.User {
	if u.CustomerRating != nil {
		rating := *u.CustomerRating
		u.CustomerRating = &rating
	}
	u.Badges = append([]string(nil), u.Badges...)
	return u
}

func paginate(items []domain.Complaint, limit, offset int) []domain.Complaint {
	if offset > 0 {
		if offset >= len(items) {
			return []domain.Complaint{}
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func containsStatus(statuses []domain.ComplaintStatus, status domain.ComplaintStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.ComplaintPriority, priority domain.ComplaintPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}
