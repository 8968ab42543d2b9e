package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/battery"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/scoring"
)

// AdmissionError indicates the request was rejected by the admission policy.
type AdmissionError struct {
	Reason string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("request rejected by admission policy: %s", e.Reason)
}

// ValidateRequest checks the structural invariants of an evaluation request
// without touching the network. It returns (false, reason) for a request the
// orchestrator must refuse.
func ValidateRequest(req *domain.EvaluationRequest) (bool, string) {
	if req == nil {
		return false, "request is empty"
	}
	if req.Participants[domain.RoleAgent] == "" {
		return false, fmt.Sprintf("missing roles: [%s]", domain.RoleAgent)
	}
	return true, "ok"
}

// StartEvaluation admits the request, creates a run, and launches the
// evaluation pipeline asynchronously. The returned run id is the handle for
// status, events, report, and cancellation.
func (s *Service) StartEvaluation(ctx context.Context, req *domain.EvaluationRequest) (*domain.StartResponse, error) {
	if s.policyEngine != nil {
		decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
			"subject_address": req.SubjectAddress(),
			"num_questions":   req.NumQuestions(),
			"domain":          req.Domain(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate admission policy: %w", err)
		}
		if decision != "allow" {
			if reason == "" {
				reason = decision
			}
			return nil, &AdmissionError{Reason: reason}
		}
	}

	runID := "run_" + uuid.New().String()[:8]
	run := &domain.Run{
		RunID:          runID,
		SubjectAddress: req.SubjectAddress(),
		Status:         domain.RunStatusCreated,
		StartedAt:      time.Now(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[runID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			s.mu.Lock()
			delete(s.cancels, runID)
			s.mu.Unlock()
		}()
		if _, err := s.Evaluate(runCtx, runID, req); err != nil {
			log.Printf("ERROR: run %s finished with error: %v", runID, err)
		}
	}()

	return &domain.StartResponse{RunID: runID}, nil
}

// Evaluate runs the evaluation pipeline for one run: Validating →
// DiscoveringPersona → GeneratingQuestions → Conversing → Scoring →
// Reporting. Fatal errors abort the run with a specific cause; per-turn
// failures are folded into the score. Cancellation is observed between
// state transitions.
func (s *Service) Evaluate(ctx context.Context, runID string, req *domain.EvaluationRequest) (*domain.EvaluationReport, error) {
	s.notify(runID, domain.EventTypeRunStarted, fmt.Sprintf("Starting PersonaGym evaluation of agent at %s", req.SubjectAddress()), nil)

	startTime := time.Now()

	// Validating
	if err := s.transition(ctx, runID, domain.RunStatusValidating, "Validating evaluation request..."); err != nil {
		return nil, err
	}
	if ok, reason := ValidateRequest(req); !ok {
		return nil, s.fail(runID, &domain.ValidationError{Reason: reason})
	}
	subjectAddress := req.SubjectAddress()

	// DiscoveringPersona
	if err := s.transition(ctx, runID, domain.RunStatusDiscoveringPersona, "Fetching persona from subject..."); err != nil {
		return nil, err
	}
	persona, err := s.subject.DiscoverPersona(ctx, subjectAddress)
	if err != nil {
		return nil, s.fail(runID, err)
	}
	s.notify(runID, domain.EventTypePersonaResolved, fmt.Sprintf("Persona: %s...", truncate(persona, 100)), nil)

	// GeneratingQuestions
	if err := s.transition(ctx, runID, domain.RunStatusGeneratingQuestions, "Generating evaluation questions..."); err != nil {
		return nil, err
	}
	questions := battery.Generate(req.NumQuestions(), req.Domain())

	// Conversing
	if err := s.transition(ctx, runID, domain.RunStatusConversing, fmt.Sprintf("Asking %d questions...", len(questions))); err != nil {
		return nil, err
	}
	turns := s.driver.Converse(ctx, subjectAddress, questions, func(i int, turn domain.ConversationTurn) {
		s.notify(runID, domain.EventTypeTurnCompleted,
			fmt.Sprintf("Turn %d/%d (%s) completed", i+1, len(questions), turn.Category),
			map[string]interface{}{"index": i, "category": turn.Category})
	})

	// Scoring
	if err := s.transition(ctx, runID, domain.RunStatusScoring, "Scoring answers..."); err != nil {
		return nil, err
	}
	board := scoring.Score(turns)
	elapsed := time.Since(startTime)

	// Reporting
	if err := s.transition(ctx, runID, domain.RunStatusReporting, "Assembling report..."); err != nil {
		return nil, err
	}
	report := &domain.EvaluationReport{
		Persona:           persona,
		OverallScore:      board.Overall,
		PerCategoryScores: board.PerCategory,
		QuestionCount:     len(questions),
		ElapsedTime:       elapsed.Seconds(),
		Turns:             turns,
	}
	if err := s.store.SaveReport(context.Background(), runID, report); err != nil {
		return nil, s.fail(runID, &domain.InternalError{Step: "report assembly", Cause: err})
	}

	if err := s.store.UpdateRunCompleted(context.Background(), runID, domain.RunStatusDone, ""); err != nil {
		log.Printf("ERROR: failed to update run status: %v", err)
	}
	s.notify(runID, domain.EventTypeRunDone, report.Summary(), map[string]interface{}{
		"overall_score": report.OverallScore,
	})

	return report, nil
}

// CancelRun marks a run cancelled and signals its pipeline to stop issuing
// new steps. In-flight network calls are not interrupted beyond their own
// context deadline.
func (s *Service) CancelRun(ctx context.Context, runID string) error {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found")
	}

	if isTerminalRunStatus(run.Status) {
		return nil // Already terminal
	}

	s.mu.Lock()
	cancel := s.cancels[runID]
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if err := s.store.UpdateRunCompleted(ctx, runID, domain.RunStatusCancelled, ""); err != nil {
		return fmt.Errorf("failed to cancel run: %w", err)
	}
	s.notify(runID, domain.EventTypeRunCancelled, "Run cancelled", nil)

	return nil
}

// GetRun retrieves a run by ID.
func (s *Service) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetEvents retrieves progress events for a run.
func (s *Service) GetEvents(ctx context.Context, runID string, afterTs int64, limit int) ([]domain.Event, error) {
	events, err := s.store.GetEvents(ctx, runID, afterTs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}

// GetReport retrieves the final report for a run, or nil while none exists.
func (s *Service) GetReport(ctx context.Context, runID string) (*domain.EvaluationReport, error) {
	report, err := s.store.GetReport(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// transition moves the run to the next pipeline state, observing cancellation
// at the state boundary.
func (s *Service) transition(ctx context.Context, runID string, status domain.RunStatus, message string) error {
	if ctx.Err() != nil {
		return s.cancelled(runID, ctx.Err())
	}
	if err := s.store.UpdateRunStatus(context.Background(), runID, status); err != nil {
		log.Printf("ERROR: failed to update run status: %v", err)
	}
	s.notify(runID, domain.EventTypeStatusUpdate, message, map[string]interface{}{"status": status})
	return nil
}

// fail moves the run to FAILED with a specific cause and returns that cause.
func (s *Service) fail(runID string, cause error) error {
	if err := s.store.UpdateRunCompleted(context.Background(), runID, domain.RunStatusFailed, cause.Error()); err != nil {
		log.Printf("ERROR: failed to update run status: %v", err)
	}
	s.notify(runID, domain.EventTypeRunFailed, fmt.Sprintf("Evaluation failed: %v", cause), nil)
	return cause
}

func (s *Service) cancelled(runID string, cause error) error {
	if err := s.store.UpdateRunCompleted(context.Background(), runID, domain.RunStatusCancelled, ""); err != nil {
		log.Printf("ERROR: failed to update run status: %v", err)
	}
	s.notify(runID, domain.EventTypeRunCancelled, "Run cancelled", nil)
	return cause
}

func isTerminalRunStatus(status domain.RunStatus) bool {
	switch status {
	case domain.RunStatusDone, domain.RunStatusFailed, domain.RunStatusCancelled:
		return true
	}
	return false
}

// truncate shortens s to at most maxLen characters without splitting a rune.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
