package ranking

// Hybrid score weights. They sum to 1.
const (
	ContentWeight    = 0.6
	VoteWeight       = 0.25
	PopularityWeight = 0.15
)

// PureSimilarity ranks every other movie by its similarity to seed and returns
// the top k. k <= 0 selects the configured default.
func (e *Engine) PureSimilarity(seed string, k int) ([]Result, error) {
	idx, err := e.catalog.LookupIndexByTitle(seed)
	if err != nil {
		return nil, err
	}
	row, err := e.matrix.Row(idx)
	if err != nil {
		return nil, err
	}
	order := e.excludeSelf(rankDescending(row), idx)
	return e.collect(order, row, limitOr(k, e.limits.Similar)), nil
}

// Hybrid ranks every other movie by
// ContentWeight*similarity + VoteWeight*vote_norm + PopularityWeight*popularity_norm
// and returns the top k. k <= 0 selects the configured default.
func (e *Engine) Hybrid(seed string, k int) ([]Result, error) {
	idx, err := e.catalog.LookupIndexByTitle(seed)
	if err != nil {
		return nil, err
	}
	content, err := e.matrix.Row(idx)
	if err != nil {
		return nil, err
	}
	scores := HybridScores(content, e.voteNorm, e.popularityNorm)
	order := e.excludeSelf(rankDescending(scores), idx)
	return e.collect(order, scores, limitOr(k, e.limits.Hybrid)), nil
}

// HybridScores blends the three signals element-wise. All slices must share a
// length.
func HybridScores(content, voteNorm, popularityNorm []float64) []float64 {
	scores := make([]float64, len(content))
	for i := range content {
		scores[i] = ContentWeight*content[i] + VoteWeight*voteNorm[i] + PopularityWeight*popularityNorm[i]
	}
	return scores
}
