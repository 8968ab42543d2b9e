package subjectclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

func TestDiscoverPersona(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"persona_description":"A retired astronaut from Ohio"}`)
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	persona, err := client.DiscoverPersona(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("DiscoverPersona failed: %v", err)
	}
	if persona != "A retired astronaut from Ohio" {
		t.Fatalf("unexpected persona: %q", persona)
	}
}

func TestDiscoverPersonaMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"no persona here"}`)
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	_, err := client.DiscoverPersona(context.Background(), server.URL)

	var discErr *domain.DiscoveryError
	if !errors.As(err, &discErr) {
		t.Fatalf("expected DiscoveryError, got %v", err)
	}
	if discErr.Kind != domain.DiscoveryMissingField {
		t.Fatalf("expected kind %q, got %q", domain.DiscoveryMissingField, discErr.Kind)
	}
}

func TestDiscoverPersonaEmptyString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"persona_description":""}`)
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	_, err := client.DiscoverPersona(context.Background(), server.URL)

	var discErr *domain.DiscoveryError
	if !errors.As(err, &discErr) || discErr.Kind != domain.DiscoveryMissingField {
		t.Fatalf("expected MissingField error, got %v", err)
	}
}

func TestDiscoverPersonaNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	_, err := client.DiscoverPersona(context.Background(), server.URL)

	var discErr *domain.DiscoveryError
	if !errors.As(err, &discErr) || discErr.Kind != domain.DiscoveryMissingField {
		t.Fatalf("expected MissingField error for non-200, got %v", err)
	}
}

func TestDiscoverPersonaUnreachable(t *testing.T) {
	// A server that is already closed: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewClient(time.Second, time.Second)
	start := time.Now()
	_, err := client.DiscoverPersona(context.Background(), addr)
	elapsed := time.Since(start)

	var discErr *domain.DiscoveryError
	if !errors.As(err, &discErr) {
		t.Fatalf("expected DiscoveryError, got %v", err)
	}
	if discErr.Kind != domain.DiscoveryUnreachable {
		t.Fatalf("expected kind %q, got %q", domain.DiscoveryUnreachable, discErr.Kind)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("discovery did not respect its timeout bound: %v", elapsed)
	}
}

func TestDiscoverPersonaTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(50*time.Millisecond, time.Second)
	_, err := client.DiscoverPersona(context.Background(), server.URL)

	var discErr *domain.DiscoveryError
	if !errors.As(err, &discErr) || discErr.Kind != domain.DiscoveryUnreachable {
		t.Fatalf("expected Unreachable error for timeout, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req domain.SubjectMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "How would you introduce yourself?" {
			t.Fatalf("unexpected message: %q", req.Message)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.SubjectMessageResponse{
			Response:  "Greetings, I am the captain.",
			ContextID: "ctx_ab12cd34",
		})
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	resp, err := client.SendMessage(context.Background(), server.URL, &domain.SubjectMessageRequest{
		Message: "How would you introduce yourself?",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Response != "Greetings, I am the captain." || resp.ContextID != "ctx_ab12cd34" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSendMessageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream broke")
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	_, err := client.SendMessage(context.Background(), server.URL, &domain.SubjectMessageRequest{Message: "hi"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestSendMessageEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":"","context_id":"ctx_1"}`)
	}))
	defer server.Close()

	client := NewClient(time.Second, time.Second)
	_, err := client.SendMessage(context.Background(), server.URL, &domain.SubjectMessageRequest{Message: "hi"})
	if err == nil {
		t.Fatalf("expected error for empty response")
	}
}
