package ranking

import (
	"fmt"
	"strings"

	"cinemind/internal/services"
)

// Strategy selects a ranking policy.
type Strategy string

const (
	StrategySimilar Strategy = "similar"
	StrategyHybrid  Strategy = "hybrid"
	StrategyMood    Strategy = "mood"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategySimilar, "pure", "content":
		return StrategySimilar, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	case StrategyMood:
		return StrategyMood, nil
	}
	return "", services.Wrap(services.ErrValidation, "ranking", "strategy", fmt.Sprintf("unknown strategy %q", value), nil)
}

// Request describes one recommendation call. Seed is a title for the
// similarity strategies and a mood label for StrategyMood.
type Request struct {
	Strategy Strategy
	Seed     string
	Limit    int
}

// Recommend dispatches req and returns titles in rank order.
func (e *Engine) Recommend(req Request) ([]string, error) {
	switch req.Strategy {
	case StrategySimilar:
		results, err := e.PureSimilarity(req.Seed, req.Limit)
		if err != nil {
			return nil, err
		}
		return Titles(results), nil
	case StrategyHybrid:
		results, err := e.Hybrid(req.Seed, req.Limit)
		if err != nil {
			return nil, err
		}
		return Titles(results), nil
	case StrategyMood:
		mood, err := ParseMood(req.Seed)
		if err != nil {
			return nil, err
		}
		movies, err := e.Mood(mood, req.Limit)
		if err != nil {
			return nil, err
		}
		titles := make([]string, len(movies))
		for i, movie := range movies {
			titles[i] = movie.Title
		}
		return titles, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "ranking", "recommend", fmt.Sprintf("unknown strategy %q", req.Strategy), nil)
	}
}
