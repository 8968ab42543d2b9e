package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvSubjectMode is the environment variable name for mode selection.
	EnvSubjectMode = "SUBJECT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client based on the SUBJECT_MODE environment
// variable. If SUBJECT_MODE=MOCK, returns a MockClient; otherwise returns a
// real Client.
func NewLLMClient(baseURL, apiKey string, timeout time.Duration) LLMClient {
	mode := os.Getenv(EnvSubjectMode)

	if mode == ModeMock {
		log.Println("SUBJECT_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey, timeout)
}
