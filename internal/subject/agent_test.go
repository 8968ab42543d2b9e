package subject

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/llm"
)

// recordingClient captures the requests the agent builds.
type recordingClient struct {
	mu       sync.Mutex
	requests []*llm.ChatCompletionRequest
	err      error
}

func (c *recordingClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{
			{Message: &llm.ChatMessage{Role: "assistant", Content: "Arr, that be true!"}},
		},
	}, nil
}

func TestAgentAnswerInCharacter(t *testing.T) {
	client := &recordingClient{}
	agent := NewAgent("A pirate captain", "gpt-4o-mini", client)

	answer, contextID, err := agent.Answer(context.Background(), "", "What is your ship called?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "Arr, that be true!" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if !strings.HasPrefix(contextID, "ctx_") {
		t.Fatalf("expected a fresh context id, got %q", contextID)
	}

	req := client.requests[0]
	if req.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "A pirate captain") {
		t.Fatalf("system prompt must carry the persona: %+v", req.Messages[0])
	}
	if req.Temperature == nil || *req.Temperature != 0.0 {
		t.Fatal("expected deterministic temperature")
	}
}

func TestAgentThreadsHistoryByContext(t *testing.T) {
	client := &recordingClient{}
	agent := NewAgent("A pirate captain", "gpt-4o-mini", client)

	_, contextID, err := agent.Answer(context.Background(), "", "First question?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	_, sameID, err := agent.Answer(context.Background(), contextID, "Second question?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if sameID != contextID {
		t.Fatalf("context id must be stable across turns: %q vs %q", sameID, contextID)
	}

	// The second request must see the first exchange.
	req := client.requests[1]
	if len(req.Messages) != 4 {
		t.Fatalf("expected system+history+user, got %d messages", len(req.Messages))
	}
	if req.Messages[1].Content != "First question?" || req.Messages[2].Role != "assistant" {
		t.Fatalf("history not threaded: %+v", req.Messages)
	}

	// A different context starts clean.
	_, _, err = agent.Answer(context.Background(), "", "Unrelated question?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(client.requests[2].Messages) != 2 {
		t.Fatalf("fresh context must carry no history, got %d messages", len(client.requests[2].Messages))
	}
}

func TestAgentAnswerEmptyQuestion(t *testing.T) {
	agent := NewAgent("A pirate captain", "gpt-4o-mini", &recordingClient{})

	_, _, err := agent.Answer(context.Background(), "", "")
	if err == nil {
		t.Fatal("expected an error for an empty question")
	}
}

func TestAgentAnswerProviderError(t *testing.T) {
	client := &recordingClient{err: errors.New("rate limited")}
	agent := NewAgent("A pirate captain", "gpt-4o-mini", client)

	_, contextID, err := agent.Answer(context.Background(), "ctx_1", "A question?")
	if err == nil {
		t.Fatal("expected an error when the provider fails")
	}
	if contextID != "ctx_1" {
		t.Fatalf("context id must survive a failed turn, got %q", contextID)
	}

	// A failed turn must not pollute the history.
	client.err = nil
	if _, _, err := agent.Answer(context.Background(), "ctx_1", "Retry?"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(client.requests[1].Messages) != 2 {
		t.Fatalf("failed turn leaked into history: %d messages", len(client.requests[1].Messages))
	}
}

func TestAgentWithMockClient(t *testing.T) {
	agent := NewAgent("A pirate captain", "gpt-4o-mini", llm.NewMockClient())

	answer, _, err := agent.Answer(context.Background(), "", "What do you treasure most?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !strings.Contains(answer, "What do you treasure most?") {
		t.Fatalf("mock answer must echo the question, got %q", answer)
	}
}
