package sla

import (
	"testing"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestOffsetByPriority(t *testing.T) {
	cases := []struct {
		priority domain.ComplaintPriority
		want     time.Duration
	}{
		{domain.ComplaintPriorityCritical, 2 * time.Hour},
		{domain.ComplaintPriorityHigh, 24 * time.Hour},
		{domain.ComplaintPriorityMedium, 72 * time.Hour},
		{domain.ComplaintPriorityLow, 168 * time.Hour},
	}
	for _, tc := range cases {
		if got := Offset(tc.priority); got != tc.want {
			t.Errorf("Offset(%s) = %v, want %v", tc.priority, got, tc.want)
		}
	}
}

func TestDeadline(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	want := created.Add(24 * time.Hour)
	if got := Deadline(domain.ComplaintPriorityHigh, created); !got.Equal(want) {
		t.Fatalf("Deadline = %v, want %v", got, want)
	}
}

func TestIsNearBreach(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := created.Add(2 * time.Hour)

	cases := []struct {
		name   string
		status domain.ComplaintStatus
		now    time.Time
		want   bool
	}{
		{"below threshold", domain.ComplaintStatusAssigned, created.Add(89 * time.Minute), false},
		{"at threshold", domain.ComplaintStatusAssigned, created.Add(90 * time.Minute), true},
		{"past threshold before deadline", domain.ComplaintStatusInProgress, created.Add(110 * time.Minute), true},
		{"past deadline", domain.ComplaintStatusAssigned, deadline.Add(time.Minute), false},
		{"resolved never near breach", domain.ComplaintStatusResolved, created.Add(110 * time.Minute), false},
		{"closed never near breach", domain.ComplaintStatusClosed, created.Add(110 * time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNearBreach(created, deadline, tc.status, tc.now); got != tc.want {
				t.Fatalf("IsNearBreach = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsBreached(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	if IsBreached(deadline, domain.ComplaintStatusAssigned, deadline.Add(-time.Minute)) {
		t.Fatal("not breached before deadline")
	}
	if !IsBreached(deadline, domain.ComplaintStatusAssigned, deadline.Add(time.Minute)) {
		t.Fatal("breached after deadline")
	}
	if IsBreached(deadline, domain.ComplaintStatusResolved, deadline.Add(time.Hour)) {
		t.Fatal("terminal complaints are never breached")
	}
	if IsBreached(deadline, domain.ComplaintStatusAssigned, deadline) {
		t.Fatal("exactly at deadline is not breached")
	}
}

func TestTimeUntilBreach(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	if got := TimeUntilBreach(deadline, deadline.Add(-30*time.Minute)); got != 30*time.Minute {
		t.Fatalf("TimeUntilBreach = %v, want 30m", got)
	}
	if got := TimeUntilBreach(deadline, deadline.Add(time.Hour)); got != 0 {
		t.Fatalf("TimeUntilBreach past deadline = %v, want 0", got)
	}
}
