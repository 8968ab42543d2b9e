// Package subject implements the persona-conditioned agent under evaluation.
package subject

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/llm"
)

// Agent answers questions while staying strictly in character. It keeps a
// per-context message history so follow-up questions in the same conversation
// see the earlier exchanges.
type Agent struct {
	persona string
	model   string
	client  llm.LLMClient

	mu        sync.Mutex
	histories map[string][]llm.ChatMessage
}

// NewAgent creates a subject agent for the given persona.
func NewAgent(persona, model string, client llm.LLMClient) *Agent {
	return &Agent{
		persona:   persona,
		model:     model,
		client:    client,
		histories: make(map[string][]llm.ChatMessage),
	}
}

// Persona returns the persona description this agent stays in character for.
func (a *Agent) Persona() string {
	return a.persona
}

// Answer responds to one question. When contextID is empty a fresh
// conversation context is created; the returned context id must be threaded
// into later calls to keep the conversation continuous.
func (a *Agent) Answer(ctx context.Context, contextID, question string) (string, string, error) {
	if question == "" {
		return "", contextID, fmt.Errorf("no question text was provided")
	}

	if contextID == "" {
		contextID = "ctx_" + uuid.New().String()[:8]
	}

	a.mu.Lock()
	history := append([]llm.ChatMessage(nil), a.histories[contextID]...)
	a.mu.Unlock()

	systemPrompt := fmt.Sprintf(
		"You are acting as: %s. You must answer the following question while staying strictly in character.",
		a.persona,
	)

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: "user", Content: question})

	temperature := 0.0
	completion, err := a.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: &temperature,
	})
	if err != nil {
		return "", contextID, fmt.Errorf("failed to call LLM: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message == nil || completion.Choices[0].Message.Content == "" {
		return "", contextID, fmt.Errorf("empty response from LLM")
	}
	answer := completion.Choices[0].Message.Content

	a.mu.Lock()
	a.histories[contextID] = append(a.histories[contextID],
		llm.ChatMessage{Role: "user", Content: question},
		llm.ChatMessage{Role: "assistant", Content: answer},
	)
	a.mu.Unlock()

	return answer, contextID, nil
}
