// Package sla computes service-level deadlines and breach predicates.
package sla

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Resolution deadlines by priority.
const (
	offsetCritical = 2 * time.Hour
	offsetHigh     = 24 * time.Hour
	offsetMedium   = 72 * time.Hour
	offsetLow      = 168 * time.Hour
)

// WarningThreshold is the elapsed fraction of the SLA window at which a
// complaint counts as nearing breach.
const WarningThreshold = 0.75

// Offset returns the fixed deadline offset for a priority.
func Offset(priority domain.ComplaintPriority) time.Duration {
	switch priority {
	case domain.ComplaintPriorityCritical:
		return offsetCritical
	case domain.ComplaintPriorityHigh:
		return offsetHigh
	case domain.ComplaintPriorityMedium:
		return offsetMedium
	case domain.ComplaintPriorityLow:
		return offsetLow
	}
	return offsetLow
}

// Deadline computes the resolution deadline for a complaint created at now.
func Deadline(priority domain.ComplaintPriority, now time.Time) time.Time {
	return now.Add(Offset(priority))
}

// IsNearBreach reports whether the complaint has consumed at least the
// warning fraction of its SLA window without yet passing the deadline.
// Terminal complaints are never near breach. Elapsed and total are measured
// in whole minutes.
func IsNearBreach(createdAt, deadline time.Time, status domain.ComplaintStatus, now time.Time) bool {
	if status.IsTerminal() {
		return false
	}
	totalMinutes := int64(deadline.Sub(createdAt) / time.Minute)
	if totalMinutes <= 0 {
		return false
	}
	elapsedMinutes := int64(now.Sub(createdAt) / time.Minute)
	fraction := float64(elapsedMinutes) / float64(totalMinutes)
	return fraction >= WarningThreshold && now.Before(deadline)
}

// IsBreached reports whether the deadline has passed. Terminal complaints are
// never breached.
func IsBreached(deadline time.Time, status domain.ComplaintStatus, now time.Time) bool {
	if status.IsTerminal() {
		return false
	}
	return now.After(deadline)
}

// TimeUntilBreach returns the remaining time before the deadline, floored at
// zero.
func TimeUntilBreach(deadline, now time.Time) time.Duration {
	if now.After(deadline) {
		return 0
	}
	return deadline.Sub(now)
}
