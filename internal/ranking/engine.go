package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
	"cinemind/internal/similarity"
)

// Default result sizes per strategy.
const (
	DefaultSimilarLimit = 5
	DefaultHybridLimit  = 10
	DefaultMoodLimit    = 10
	DefaultChartLimit   = 10
)

// SelfExclusion selects how the seed movie is kept out of its own results.
type SelfExclusion string

const (
	// ExcludeSeed removes the seed's own row wherever it ranks.
	ExcludeSeed SelfExclusion = "seed"
	// ExcludeFirstRanked drops whichever entry ranks first, on the assumption
	// that self-similarity is maximal. When the seed does not rank first it can
	// reappear in the results.
	ExcludeFirstRanked SelfExclusion = "first_ranked"
)

// ParseSelfExclusion validates a policy name. Empty selects ExcludeSeed.
func ParseSelfExclusion(value string) (SelfExclusion, error) {
	switch SelfExclusion(strings.ToLower(strings.TrimSpace(value))) {
	case "", ExcludeSeed:
		return ExcludeSeed, nil
	case ExcludeFirstRanked:
		return ExcludeFirstRanked, nil
	default:
		return "", services.Wrap(services.ErrValidation, "ranking", "self exclusion", fmt.Sprintf("unknown policy %q", value), nil)
	}
}

// Limits overrides the per-strategy default result sizes.
type Limits struct {
	Similar int
	Hybrid  int
	Mood    int
	Chart   int
}

// Result is one ranked candidate.
type Result struct {
	Index int     `json:"index"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Titles extracts titles from ranked results, preserving order.
func Titles(results []Result) []string {
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Title
	}
	return titles
}

// Engine ranks catalog rows. It is safe for concurrent use.
type Engine struct {
	catalog   *catalog.Catalog
	matrix    *similarity.Matrix
	exclusion SelfExclusion
	limits    Limits

	voteNorm       []float64
	popularityNorm []float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSelfExclusion sets the self exclusion policy.
func WithSelfExclusion(policy SelfExclusion) Option {
	return func(e *Engine) {
		if policy != "" {
			e.exclusion = policy
		}
	}
}

// WithLimits overrides default result sizes. Non-positive fields keep the
// package defaults.
func WithLimits(limits Limits) Option {
	return func(e *Engine) {
		if limits.Similar > 0 {
			e.limits.Similar = limits.Similar
		}
		if limits.Hybrid > 0 {
			e.limits.Hybrid = limits.Hybrid
		}
		if limits.Mood > 0 {
			e.limits.Mood = limits.Mood
		}
		if limits.Chart > 0 {
			e.limits.Chart = limits.Chart
		}
	}
}

// New builds an engine over a catalog and its similarity matrix. The matrix
// must be indexed identically to the catalog.
func New(cat *catalog.Catalog, matrix *similarity.Matrix, opts ...Option) (*Engine, error) {
	if cat == nil || matrix == nil {
		return nil, services.Wrap(services.ErrConfiguration, "ranking", "init", "catalog and similarity matrix are required", nil)
	}
	if cat.Len() != matrix.Size() {
		return nil, services.Wrap(services.ErrValidation, "ranking", "init",
			fmt.Sprintf("catalog has %d rows but similarity matrix is %dx%d", cat.Len(), matrix.Size(), matrix.Size()), nil)
	}
	e := &Engine{
		catalog:   cat,
		matrix:    matrix,
		exclusion: ExcludeSeed,
		limits: Limits{
			Similar: DefaultSimilarLimit,
			Hybrid:  DefaultHybridLimit,
			Mood:    DefaultMoodLimit,
			Chart:   DefaultChartLimit,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.voteNorm = MinMaxNormalize(cat.VoteAverages())
	e.popularityNorm = MinMaxNormalize(cat.Popularities())
	return e, nil
}

// Catalog returns the catalog the engine ranks.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// SelfExclusion returns the configured policy.
func (e *Engine) SelfExclusion() SelfExclusion {
	return e.exclusion
}

// Limits returns the effective default result sizes.
func (e *Engine) Limits() Limits {
	return e.limits
}

// rankDescending orders row indices by score, highest first. The sort is
// stable over original order so equal scores keep ascending index order, and
// NaN scores sink to the end.
func rankDescending(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	return order
}

func (e *Engine) excludeSelf(order []int, seed int) []int {
	switch e.exclusion {
	case ExcludeFirstRanked:
		if len(order) > 0 {
			return order[1:]
		}
		return order
	default:
		return slices.DeleteFunc(order, func(idx int) bool { return idx == seed })
	}
}

func (e *Engine) collect(order []int, scores []float64, k int) []Result {
	if k < len(order) {
		order = order[:k]
	}
	results := make([]Result, len(order))
	for i, idx := range order {
		results[i] = Result{Index: idx, Title: e.catalog.Title(idx), Score: scores[idx]}
	}
	return results
}

func limitOr(k, fallback int) int {
	if k <= 0 {
		return fallback
	}
	return k
}
