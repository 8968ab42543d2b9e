// Package scoring folds conversation turns into per-category and overall scores.
//
// The per-turn heuristic is a deliberately simple length proxy; a production
// scorer would substitute an LLM rubric judgment with the same output contract.
package scoring

import (
	"strings"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

const (
	minTurnScore = 1.0
	maxTurnScore = 5.0
	lengthDiv    = 50.0
)

// TurnScore returns the heuristic score for a single answer on the 0-5 scale.
// Answers carrying the error sentinel score 0.0; everything else scores
// min(5.0, max(1.0, len/50.0)).
func TurnScore(answer string) float64 {
	if strings.HasPrefix(answer, domain.AnswerErrorPrefix) {
		return 0.0
	}
	score := float64(len(answer)) / lengthDiv
	if score < minTurnScore {
		return minTurnScore
	}
	if score > maxTurnScore {
		return maxTurnScore
	}
	return score
}

// Score aggregates turns into a ScoreBoard. Per-category scores are the mean
// of turn scores sharing that category; categories without turns are absent.
// The overall score is the mean of the category means, weighting categories
// equally regardless of how many turns each received, and 0.0 when no
// categories were scored.
func Score(turns []domain.ConversationTurn) domain.ScoreBoard {
	sums := make(map[domain.Category]float64)
	counts := make(map[domain.Category]int)

	for _, turn := range turns {
		sums[turn.Category] += TurnScore(turn.Answer)
		counts[turn.Category]++
	}

	perCategory := make(map[domain.Category]float64, len(sums))
	for category, sum := range sums {
		perCategory[category] = sum / float64(counts[category])
	}

	overall := 0.0
	if len(perCategory) > 0 {
		total := 0.0
		for _, mean := range perCategory {
			total += mean
		}
		overall = total / float64(len(perCategory))
	}

	return domain.ScoreBoard{
		Overall:     overall,
		PerCategory: perCategory,
	}
}
