package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
)

// Mood is a closed-set label mapped to a fixed group of genres.
type Mood string

const (
	MoodHappy       Mood = "Happy 😊"
	MoodSad         Mood = "Sad 😢"
	MoodAction      Mood = "Action 🔥"
	MoodRomantic    Mood = "Romantic ❤"
	MoodMindBending Mood = "Mind-Bending 🧠"
)

var moodOrder = []Mood{MoodHappy, MoodSad, MoodAction, MoodRomantic, MoodMindBending}

var moodGenres = map[Mood][]string{
	MoodHappy:       {"Comedy", "Animation", "Family"},
	MoodSad:         {"Drama", "Romance"},
	MoodAction:      {"Action", "Thriller"},
	MoodRomantic:    {"Romance"},
	MoodMindBending: {"Sci-Fi", "Mystery"},
}

// Moods lists every mood in display order.
func Moods() []Mood {
	return slices.Clone(moodOrder)
}

// Genres returns the genres a mood maps to.
func (m Mood) Genres() ([]string, bool) {
	genres, ok := moodGenres[m]
	if !ok {
		return nil, false
	}
	return slices.Clone(genres), true
}

// Name is the mood label without its trailing emoji.
func (m Mood) Name() string {
	return moodName(string(m))
}

// ParseMood resolves a mood from its full label or, ignoring case, from its
// name alone ("happy", "mind-bending").
func ParseMood(label string) (Mood, error) {
	trimmed := strings.TrimSpace(label)
	if _, ok := moodGenres[Mood(trimmed)]; ok {
		return Mood(trimmed), nil
	}
	key := cases.Fold().String(moodName(trimmed))
	if key != "" {
		for _, mood := range moodOrder {
			if cases.Fold().String(mood.Name()) == key {
				return mood, nil
			}
		}
	}
	return "", services.Wrap(services.ErrNotFound, "ranking", "mood", fmt.Sprintf("unknown mood %q", label), nil)
}

func moodName(label string) string {
	return strings.TrimRightFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Mood returns up to k movies carrying at least one of the mood's genres,
// ordered by vote average then popularity, both descending. An empty match is
// a valid, empty result. k <= 0 selects the configured default.
func (e *Engine) Mood(mood Mood, k int) ([]catalog.Movie, error) {
	genres, ok := mood.Genres()
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "ranking", "mood", fmt.Sprintf("unknown mood %q", mood), nil)
	}
	keys := make(map[string]struct{}, len(genres))
	for _, genre := range genres {
		keys[catalog.FoldGenre(genre)] = struct{}{}
	}

	var matched []catalog.Movie
	for idx, movie := range e.catalog.Movies() {
		if e.catalog.MatchesAnyGenre(idx, keys) {
			matched = append(matched, movie)
		}
	}
	slices.SortStableFunc(matched, func(a, b catalog.Movie) int {
		if c := cmp.Compare(b.VoteAverage, a.VoteAverage); c != 0 {
			return c
		}
		return cmp.Compare(b.Popularity, a.Popularity)
	})

	k = limitOr(k, e.limits.Mood)
	if k < len(matched) {
		matched = matched[:k]
	}
	return matched, nil
}
