// Package subjectclient provides the HTTP client for talking to a subject
// under evaluation: persona discovery and per-turn message exchange.
package subjectclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

// Client is an HTTP client for a subject agent.
type Client struct {
	httpClient       *http.Client
	discoveryTimeout time.Duration
	turnTimeout      time.Duration
}

// NewClient creates a new subject client with the given per-call timeouts.
func NewClient(discoveryTimeout, turnTimeout time.Duration) *Client {
	return &Client{
		httpClient:       &http.Client{},
		discoveryTimeout: discoveryTimeout,
		turnTimeout:      turnTimeout,
	}
}

// DiscoverPersona fetches the subject's persona description from its
// /profile endpoint. Single attempt, bounded by the discovery timeout.
// Failures are returned as *domain.DiscoveryError.
func (c *Client) DiscoverPersona(ctx context.Context, address string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.discoveryTimeout)
	defer cancel()

	url := strings.TrimSuffix(address, "/") + "/profile"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &domain.DiscoveryError{Kind: domain.DiscoveryUnreachable, Address: address, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.DiscoveryError{Kind: domain.DiscoveryUnreachable, Address: address, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.DiscoveryError{
			Kind:    domain.DiscoveryMissingField,
			Address: address,
			Cause:   fmt.Errorf("profile endpoint returned status %d", resp.StatusCode),
		}
	}

	var profile domain.SubjectProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", &domain.DiscoveryError{
			Kind:    domain.DiscoveryMissingField,
			Address: address,
			Cause:   fmt.Errorf("failed to decode profile: %w", err),
		}
	}

	// An empty persona is as useless as a missing one.
	if profile.PersonaDescription == "" {
		return "", &domain.DiscoveryError{
			Kind:    domain.DiscoveryMissingField,
			Address: address,
			Cause:   fmt.Errorf("persona_description missing or empty"),
		}
	}

	return profile.PersonaDescription, nil
}

// SendMessage posts one conversation message to the subject and returns its
// answer together with the continuity token the subject wants threaded into
// the next turn.
func (c *Client) SendMessage(ctx context.Context, address string, req *domain.SubjectMessageRequest) (*domain.SubjectMessageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.turnTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	url := strings.TrimSuffix(address, "/") + "/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach subject: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("subject returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var msgResp domain.SubjectMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("failed to decode subject response: %w", err)
	}
	if msgResp.Response == "" {
		return nil, fmt.Errorf("subject returned an empty response")
	}

	return &msgResp, nil
}
