// Package domain defines the core domain models for the evaluator.
package domain

import (
	"encoding/json"
	"time"
)

// RunStatus represents the status of an evaluation run.
type RunStatus string

const (
	RunStatusCreated             RunStatus = "CREATED"
	RunStatusValidating          RunStatus = "VALIDATING"
	RunStatusDiscoveringPersona  RunStatus = "DISCOVERING_PERSONA"
	RunStatusGeneratingQuestions RunStatus = "GENERATING_QUESTIONS"
	RunStatusConversing          RunStatus = "CONVERSING"
	RunStatusScoring             RunStatus = "SCORING"
	RunStatusReporting           RunStatus = "REPORTING"
	RunStatusDone                RunStatus = "DONE"
	RunStatusFailed              RunStatus = "FAILED"
	RunStatusCancelled           RunStatus = "CANCELLED"
)

// EventType represents the type of a progress event.
type EventType string

const (
	EventTypeRunStarted      EventType = "run_started"
	EventTypeStatusUpdate    EventType = "status_update"
	EventTypePersonaResolved EventType = "persona_resolved"
	EventTypeTurnCompleted   EventType = "turn_completed"
	EventTypeRunDone         EventType = "run_done"
	EventTypeRunFailed       EventType = "run_failed"
	EventTypeRunCancelled    EventType = "run_cancelled"
)

// Category is one of the fixed evaluation dimensions a question is tagged with.
type Category string

const (
	CategoryExpectedAction      Category = "Expected Action"
	CategoryActionJustification Category = "Action Justification"
	CategoryLinguisticHabits    Category = "Linguistic Habits"
	CategoryPersonaConsistency  Category = "Persona Consistency"
	CategoryToxicity            Category = "Toxicity"
)

// Categories is the fixed ordered list used for question tagging.
var Categories = []Category{
	CategoryExpectedAction,
	CategoryActionJustification,
	CategoryLinguisticHabits,
	CategoryPersonaConsistency,
	CategoryToxicity,
}

// Question is a single probe question tagged with its evaluation category.
type Question struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// ConversationTurn records one question/answer exchange with the subject.
// Answer carries the "Error: <cause>" sentinel when the exchange failed.
type ConversationTurn struct {
	Category Category `json:"category"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
}

// ScoreBoard holds per-category mean scores and the overall score.
// Overall is the mean of the category means, not of raw turn scores.
type ScoreBoard struct {
	Overall     float64              `json:"overall_score"`
	PerCategory map[Category]float64 `json:"per_category_scores"`
}

// EvaluationRequest is the inbound request to evaluate a subject.
// Participants must contain the "agent" role pointing at the subject.
type EvaluationRequest struct {
	Participants map[string]string `json:"participants"`
	Config       EvaluationConfig  `json:"config"`
}

// EvaluationConfig is the recognized configuration bag.
type EvaluationConfig struct {
	NumQuestions *int   `json:"num_questions,omitempty"`
	Domain       string `json:"domain,omitempty"`
}

// RoleAgent is the required participant role naming the subject under test.
const RoleAgent = "agent"

// DefaultNumQuestions is used when the request does not set num_questions.
const DefaultNumQuestions = 4

// DefaultDomain is used when the request does not set a domain.
const DefaultDomain = "general"

// SubjectAddress returns the subject endpoint registered under the agent role.
func (r *EvaluationRequest) SubjectAddress() string {
	return r.Participants[RoleAgent]
}

// NumQuestions returns the requested question count, defaulted and floored at 0.
func (r *EvaluationRequest) NumQuestions() int {
	if r.Config.NumQuestions == nil {
		return DefaultNumQuestions
	}
	if *r.Config.NumQuestions < 0 {
		return 0
	}
	return *r.Config.NumQuestions
}

// Domain returns the requested question domain, defaulted.
func (r *EvaluationRequest) Domain() string {
	if r.Config.Domain == "" {
		return DefaultDomain
	}
	return r.Config.Domain
}

// EvaluationReport is the final artifact of a run. Immutable once assembled.
type EvaluationReport struct {
	Persona           string               `json:"persona"`
	OverallScore      float64              `json:"overall_score"`
	PerCategoryScores map[Category]float64 `json:"per_category_scores"`
	QuestionCount     int                  `json:"question_count"`
	ElapsedTime       float64              `json:"time_used"`
	Turns             []ConversationTurn   `json:"turns,omitempty"`
}

// Run represents a single evaluation run.
type Run struct {
	RunID          string     `json:"run_id"`
	SubjectAddress string     `json:"subject_address"`
	Status         RunStatus  `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Event represents a progress event recorded during a run.
type Event struct {
	EventID string          `json:"event_id"`
	RunID   string          `json:"run_id"`
	Ts      int64           `json:"ts"` // Unix milliseconds
	Type    EventType       `json:"type"`
	Message string          `json:"message,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartResponse is returned when a run is accepted.
type StartResponse struct {
	RunID string `json:"run_id"`
}

// SubjectMessageRequest is the message sent to the subject's conversation endpoint.
type SubjectMessageRequest struct {
	Message   string `json:"message"`
	ContextID string `json:"context_id,omitempty"`
}

// SubjectMessageResponse is the subject's answer plus its continuity token.
type SubjectMessageResponse struct {
	Response  string `json:"response"`
	ContextID string `json:"context_id,omitempty"`
}

// SubjectProfile is the subject's metadata served at /profile.
type SubjectProfile struct {
	PersonaDescription string `json:"persona_description"`
}
