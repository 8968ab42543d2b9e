package domain

import (
	"fmt"
	"strings"
)

// Summary renders the human-readable result text for a report. Categories
// appear in their fixed evaluation order.
func (r *EvaluationReport) Summary() string {
	var lines []string
	for _, category := range Categories {
		if score, ok := r.PerCategoryScores[category]; ok {
			lines = append(lines, fmt.Sprintf("  %s: %.2f", category, score))
		}
	}

	persona := r.Persona
	if runes := []rune(persona); len(runes) > 100 {
		persona = string(runes[:100])
	}

	return fmt.Sprintf(`PersonaGym Evaluation Results
Persona: %s...
Overall Score: %.2f/5.0
Questions: %d
Time: %.1fs

Task Scores:
%s`, persona, r.OverallScore, r.QuestionCount, r.ElapsedTime, strings.Join(lines, "\n"))
}
