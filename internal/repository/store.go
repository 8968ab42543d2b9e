// Package repository provides persistence for runs, progress events, and reports.
package repository

import (
	"context"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

// Store defines the persistence operations used by the evaluator.
type Store interface {
	// Run operations
	CreateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus) error
	UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, errMsg string) error

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, runID string, afterTs int64, limit int) ([]domain.Event, error)

	// Report operations
	SaveReport(ctx context.Context, runID string, report *domain.EvaluationReport) error
	GetReport(ctx context.Context, runID string) (*domain.EvaluationReport, error)

	Close() error
}
