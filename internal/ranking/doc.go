// Package ranking turns the catalog and the precomputed similarity matrix into
// ordered recommendation lists.
//
// Three strategies are exposed:
//   - PureSimilarity ranks every movie by its similarity to a seed title.
//   - Hybrid blends similarity with min-max normalized vote average and
//     popularity using the fixed ContentWeight/VoteWeight/PopularityWeight.
//   - Mood filters by the genres mapped to a mood label and orders by
//     (vote average, popularity), both descending.
//
// Chart builds the catalog-wide trending, top-rated and popular views.
//
// The Engine holds no mutable state. Every ordering uses a stable sort over
// original row order, so ties always resolve to the lower index first and
// results are deterministic for fixed inputs.
package ranking
