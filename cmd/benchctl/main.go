// Command benchctl submits an evaluation to the evaluator, streams its
// progress over WebSocket, and prints the final report summary.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

func main() {
	server := flag.String("server", "http://localhost:9009", "Evaluator base URL")
	agent := flag.String("agent", "http://localhost:8001", "Subject agent address")
	questions := flag.Int("questions", 4, "Number of questions to ask")
	evalDomain := flag.String("domain", "general", "Question domain hint")
	flag.Parse()

	log.SetFlags(log.Ltime)

	runID, err := startEvaluation(*server, *agent, *questions, *evalDomain)
	if err != nil {
		log.Fatalf("Failed to start evaluation: %v", err)
	}
	fmt.Printf("Run started: %s\n", runID)

	if err := streamEvents(*server, runID); err != nil {
		log.Printf("Stream ended: %v", err)
	}

	summary, err := fetchSummary(*server, runID)
	if err != nil {
		log.Fatalf("Failed to fetch report: %v", err)
	}
	fmt.Printf("\n%s\n", summary)
}

func startEvaluation(server, agent string, questions int, evalDomain string) (string, error) {
	req := domain.EvaluationRequest{
		Participants: map[string]string{domain.RoleAgent: agent},
		Config: domain.EvaluationConfig{
			NumQuestions: &questions,
			Domain:       evalDomain,
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := http.Post(strings.TrimSuffix(server, "/")+"/v1/evaluations", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("post evaluation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("evaluator returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var start domain.StartResponse
	if err := json.NewDecoder(resp.Body).Decode(&start); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return start.RunID, nil
}

// streamEvents attaches to the run's progress stream and prints events until
// the run reaches a terminal state.
func streamEvents(server, runID string) error {
	wsURL, err := toWebSocketURL(server, "/v1/evaluations/"+runID+"/stream")
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return fmt.Errorf("read: %w", err)
			}
			return nil
		}

		var event domain.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("Unmarshal error: %v", err)
			continue
		}

		fmt.Printf("[%s] %s\n", event.Type, event.Message)

		switch event.Type {
		case domain.EventTypeRunDone, domain.EventTypeRunFailed, domain.EventTypeRunCancelled:
			return nil
		}
	}
}

func fetchSummary(server, runID string) (string, error) {
	resp, err := http.Get(strings.TrimSuffix(server, "/") + "/v1/evaluations/" + runID + "/report")
	if err != nil {
		return "", fmt.Errorf("get report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("evaluator returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode report: %w", err)
	}
	return payload.Summary, nil
}

func toWebSocketURL(server, path string) (string, error) {
	parsed, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path = path
	return parsed.String(), nil
}
