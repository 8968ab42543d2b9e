// Package battery generates the fixed probe-question battery for a run.
package battery

import "github.com/Li-Yueting/agentbeats-tutorial/internal/domain"

// templates is the fixed question pool. The i-th question is tagged with
// Categories[i % len(Categories)].
var templates = []string{
	"How would you introduce yourself?",
	"What is your professional background?",
	"How do you typically approach problem-solving?",
	"What are your key strengths?",
	"Describe a challenging situation you've handled.",
}

// PoolSize returns the number of available question templates.
func PoolSize() int {
	return len(templates)
}

// Generate returns an ordered battery of questions. count is clamped to
// [0, PoolSize()]. The domain hint is accepted but does not change the
// question phrasing; category assignment order is fixed.
func Generate(count int, _ string) []domain.Question {
	if count < 0 {
		count = 0
	}
	if count > len(templates) {
		count = len(templates)
	}

	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, domain.Question{
			Category: domain.Categories[i%len(domain.Categories)],
			Text:     templates[i],
		})
	}
	return questions
}
