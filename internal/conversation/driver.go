// Package conversation drives the ordered, context-threaded question/answer
// exchange against a subject.
package conversation

import (
	"context"
	"log"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

// Messenger sends one conversation message to a subject.
type Messenger interface {
	SendMessage(ctx context.Context, address string, req *domain.SubjectMessageRequest) (*domain.SubjectMessageResponse, error)
}

// TurnObserver is called after each completed turn. Delivery is best-effort
// and must never block the exchange.
type TurnObserver func(index int, turn domain.ConversationTurn)

// Driver conducts a conversation with a subject. Each Converse call owns its
// own continuity token; drivers hold no per-run state and are safe to share.
type Driver struct {
	client Messenger
}

// NewDriver creates a conversation driver on top of the given messenger.
func NewDriver(client Messenger) *Driver {
	return &Driver{client: client}
}

// Converse asks the questions strictly in order, threading the subject's
// continuity token from each successful turn into the next request. A failed
// turn records an error-marked answer and the exchange continues with the
// last known-good token; no turn is retried. The loop stops early only when
// ctx is cancelled, returning the turns completed so far.
func (d *Driver) Converse(ctx context.Context, address string, questions []domain.Question, observer TurnObserver) []domain.ConversationTurn {
	turns := make([]domain.ConversationTurn, 0, len(questions))
	contextID := ""

	for i, question := range questions {
		if ctx.Err() != nil {
			log.Printf("WARN: conversation cancelled after %d/%d turns", len(turns), len(questions))
			break
		}

		turn := domain.ConversationTurn{
			Category: question.Category,
			Question: question.Text,
		}

		resp, err := d.client.SendMessage(ctx, address, &domain.SubjectMessageRequest{
			Message:   question.Text,
			ContextID: contextID,
		})
		if err != nil {
			log.Printf("ERROR: turn %d/%d failed: %v", i+1, len(questions), err)
			turn.Answer = domain.AnswerErrorPrefix + ": " + err.Error()
		} else {
			turn.Answer = resp.Response
			// The subject is authoritative for continuity.
			if resp.ContextID != "" {
				contextID = resp.ContextID
			}
		}

		turns = append(turns, turn)
		if observer != nil {
			observer(i, turn)
		}
	}

	return turns
}
