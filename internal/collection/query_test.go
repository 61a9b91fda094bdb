package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/models"
)

func episode(id uint, show string, season, ep int) *models.MediaItem {
	return &models.MediaItem{
		ID:        id,
		Kind:      models.MediaKindEpisode,
		Path:      "/tv/" + show,
		Title:     show,
		ShowTitle: ptr(show),
		Season:    ptr(season),
		Episode:   ptr(ep),
		Duration:  22 * 60,
	}
}

func TestQueryMatch(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	simpsons := episode(1, "The Simpsons", 4, 12)
	movie := &models.MediaItem{
		ID:          2,
		Kind:        models.MediaKindMovie,
		Title:       "Alien",
		Path:        "/movies/alien.mkv",
		Duration:    117 * 60,
		ReleaseDate: ptr(time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		query string
		item  *models.MediaItem
		want  bool
	}{
		{`show == "The Simpsons" && season >= 3`, simpsons, true},
		{`show == "The Simpsons" && season >= 5`, simpsons, false},
		{`kind == "movie" && year < 1980`, movie, true},
		{`minutes > 100`, movie, true},
		{`minutes > 100`, simpsons, false},
		{`has_show`, simpsons, true},
		{`has_show`, movie, false},
		{`age_days > 365`, movie, true},
		{`age_days < 0`, simpsons, true},
		{`path =~ "^/movies/"`, movie, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := q.Match(tt.item, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuery_Rejects(t *testing.T) {
	for _, text := range []string{"", "   ", `rating > 5`, `show == `, `(season > 1`} {
		_, err := ParseQuery(text)
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %q", text)
	}
}

func TestQueryMatch_NonBoolean(t *testing.T) {
	q, err := ParseQuery(`season + 1`)
	require.NoError(t, err)
	_, err = q.Match(episode(1, "Cheers", 1, 1), time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Equal(t, `season + 1`, q.String())
}
