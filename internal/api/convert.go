package api

import (
	"math"
	"slices"

	"cinemind/internal/catalog"
	"cinemind/internal/ranking"
	"cinemind/internal/session"
)

// FromMovie converts a catalog row to its API representation.
func FromMovie(movie catalog.Movie) Movie {
	genres := slices.Clone(movie.Genres)
	if genres == nil {
		genres = []string{}
	}
	return Movie{
		Index:       movie.ID,
		Title:       movie.Title,
		Genres:      genres,
		Popularity:  movie.Popularity,
		VoteAverage: movie.VoteAverage,
		VoteCount:   movie.VoteCount,
	}
}

// FromMovies converts catalog rows to ranked DTOs, numbering from 1.
func FromMovies(movies []catalog.Movie) []Movie {
	out := make([]Movie, len(movies))
	for i, movie := range movies {
		out[i] = FromMovie(movie)
		out[i].Rank = i + 1
	}
	return out
}

// FromResults converts scored results to ranked DTOs, filling catalog fields
// from cat.
func FromResults(cat *catalog.Catalog, results []ranking.Result) []Movie {
	out := make([]Movie, len(results))
	for i, result := range results {
		row, err := cat.Row(result.Index)
		if err != nil {
			row = catalog.Movie{ID: result.Index, Title: result.Title}
		}
		out[i] = FromMovie(row)
		out[i].Rank = i + 1
		if score := result.Score; !math.IsNaN(score) && !math.IsInf(score, 0) {
			out[i].Score = &score
		}
	}
	return out
}

// FromMoods lists moods with their genres.
func FromMoods(moods []ranking.Mood) []Mood {
	out := make([]Mood, 0, len(moods))
	for _, mood := range moods {
		genres, _ := mood.Genres()
		out = append(out, Mood{Label: string(mood), Name: mood.Name(), Genres: genres})
	}
	return out
}

// FromWatchlist wraps a session's watchlist.
func FromWatchlist(state *session.State) WatchlistResponse {
	titles := state.Watchlist().Contents()
	if titles == nil {
		titles = []string{}
	}
	return WatchlistResponse{SessionID: state.ID(), Titles: titles}
}

// TitlesOf extracts titles from DTOs, preserving order.
func TitlesOf(movies []Movie) []string {
	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
	}
	return titles
}
