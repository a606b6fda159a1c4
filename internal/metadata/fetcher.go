package metadata

import (
	"context"

	"cinemind/internal/services/omdb"
)

// Fetcher performs one remote lookup.
type Fetcher interface {
	Fetch(ctx context.Context, title string) (Details, error)
}

// Persister is the optional durable cache behind the in-memory one.
type Persister interface {
	CachedDetails(ctx context.Context, title string) (Details, bool, error)
	StoreDetails(ctx context.Context, title string, details Details) error
}

// OMDbFetcher adapts the OMDb client to Fetcher.
type OMDbFetcher struct {
	client *omdb.Client
}

// NewOMDbFetcher wraps client.
func NewOMDbFetcher(client *omdb.Client) *OMDbFetcher {
	return &OMDbFetcher{client: client}
}

// Fetch looks title up on OMDb.
func (f *OMDbFetcher) Fetch(ctx context.Context, title string) (Details, error) {
	resp, err := f.client.FetchByTitle(ctx, title)
	if err != nil {
		return Details{}, err
	}
	return Details{
		PosterURL: resp.Poster,
		Plot:      resp.Plot,
		Actors:    resp.Actors,
		Director:  resp.Director,
		Runtime:   resp.Runtime,
		Rating:    resp.IMDbRating,
	}, nil
}
