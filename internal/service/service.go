// Package service implements the evaluation orchestrator: it validates
// inbound requests, discovers the subject's persona, drives the scripted
// conversation, scores the answers, and assembles the final report.
package service

import (
	"context"
	"sync"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/conversation"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/hub"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/repository"
	"github.com/Li-Yueting/agentbeats-tutorial/policy"
)

// SubjectClient is the network surface the orchestrator needs from a subject.
type SubjectClient interface {
	DiscoverPersona(ctx context.Context, address string) (string, error)
	conversation.Messenger
}

// Service orchestrates evaluation runs. Each run owns its own context,
// continuity token, and turn sequence; concurrent runs share nothing mutable.
type Service struct {
	store        repository.Store
	subject      SubjectClient
	driver       *conversation.Driver
	hub          *hub.Hub
	policyEngine *policy.Engine

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New creates the orchestrator service. The hub and policy engine may be nil;
// progress streaming and admission checks are then skipped.
func New(store repository.Store, subject SubjectClient, h *hub.Hub, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		subject:      subject,
		driver:       conversation.NewDriver(subject),
		hub:          h,
		policyEngine: policyEngine,
		cancels:      make(map[string]context.CancelFunc),
	}
}
