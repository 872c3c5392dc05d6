package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	CustomerID      *string
	AssignedStaffID *string
	Statuses        []domain.ComplaintStatus
	Priorities      []domain.ComplaintPriority
	SearchTerm      *string
	Limit           int
	Offset          int
}

// ComplaintRepository encapsulates complaint persistence.
//
// The deadline-window queries back the SLA monitor: both only return
// complaints in non-terminal states.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	// Update persists lifecycle fields (priority, status, assignee). The
	// escalation level is owned by Escalate and never written here.
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	ListNonTerminal(ctx context.Context) ([]domain.Complaint, error)
	ListNonTerminalDeadlineBefore(ctx context.Context, t time.Time) ([]domain.Complaint, error)
	ListNonTerminalDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Complaint, error)
	// Escalate atomically increments the escalation level and forces the
	// status to ESCALATED in a single update, returning the new level. It
	// refuses terminal complaints with pgx.ErrNoRows.
	Escalate(ctx context.Context, id string) (int, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error)
	CountByPriority(ctx context.Context) (map[domain.ComplaintPriority]int, error)
	// AverageResolutionHours averages created-to-last-update time across
	// terminal complaints, 0 when none are terminal yet.
	AverageResolutionHours(ctx context.Context) (float64, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the Postgres-backed repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, category, priority, status, sentiment,
               customer_id, assigned_staff_id, escalation_level, sla_deadline, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (title, description, category, priority, status, sentiment, customer_id, assigned_staff_id, escalation_level, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.Sentiment,
		complaint.CustomerID,
		complaint.AssignedStaffID,
		complaint.EscalationLevel,
		complaint.SLADeadline,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

// Update persists lifecycle fields only. The escalation level is deliberately
// not in the column list: it is owned by Escalate, and writing it here from a
// stale read would lose concurrent increments.
func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET priority=$1, status=$2, assigned_staff_id=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Priority,
		complaint.Status,
		complaint.AssignedStaffID,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	var c domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Priority,
		&c.Status,
		&c.Sentiment,
		&c.CustomerID,
		&c.AssignedStaffID,
		&c.EscalationLevel,
		&c.SLADeadline,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		clauses = append(clauses, fmt.Sprintf("assigned_staff_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args), len(args)))
	}

	query := base + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListNonTerminal(ctx context.Context) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
             WHERE status NOT IN ('RESOLVED','CLOSED')`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListNonTerminalDeadlineBefore(ctx context.Context, t time.Time) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
             WHERE status NOT IN ('RESOLVED','CLOSED') AND sla_deadline < $1`
	rows, err := r.pool.Query(ctx, query, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListNonTerminalDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
             WHERE status NOT IN ('RESOLVED','CLOSED') AND sla_deadline BETWEEN $1 AND $2`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) Escalate(ctx context.Context, id string) (int, error) {
	// The status guard keeps a complaint resolved between the breach query
	// and this update from being dragged back out of a terminal state.
	const query = `
        UPDATE complaints
        SET escalation_level = escalation_level + 1, status = 'ESCALATED', updated_at = NOW()
        WHERE id = $1 AND status NOT IN ('RESOLVED','CLOSED')
        RETURNING escalation_level`
	var level int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&level); err != nil {
		return 0, err
	}
	return level, nil
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) CountByPriority(ctx context.Context) (map[domain.ComplaintPriority]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT priority, COUNT(*) FROM complaints GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintPriority]int)
	for rows.Next() {
		var priority domain.ComplaintPriority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[priority] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) AverageResolutionHours(ctx context.Context) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600.0), 0)
        FROM complaints WHERE status IN ('RESOLVED','CLOSED')`
	var hours float64
	if err := r.pool.QueryRow(ctx, query).Scan(&hours); err != nil {
		return 0, err
	}
	return hours, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	complaints := []domain.Complaint{}
	for rows.Next() {
		var c domain.Complaint
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Description,
			&c.Category,
			&c.Priority,
			&c.Status,
			&c.Sentiment,
			&c.CustomerID,
			&c.AssignedStaffID,
			&c.EscalationLevel,
			&c.SLADeadline,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}
