package collection

import (
	"cmp"
	"encoding/binary"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stwalsh4118/playout/internal/models"
)

// CompareChronological orders media by show, season, episode, release date,
// title and finally id
func CompareChronological(a, b *models.MediaItem) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(deref(a.ShowTitle, "")), strings.ToLower(deref(b.ShowTitle, ""))),
		cmp.Compare(deref(a.Season, 0), deref(b.Season, 0)),
		cmp.Compare(deref(a.Episode, 0), deref(b.Episode, 0)),
		deref(a.ReleaseDate, time.Time{}).Compare(deref(b.ReleaseDate, time.Time{})),
		strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
		cmp.Compare(a.ID, b.ID),
	)
}

// CompareSeasonEpisode orders media by season and episode, ignoring show
func CompareSeasonEpisode(a, b *models.MediaItem) int {
	return cmp.Or(
		cmp.Compare(deref(a.Season, 0), deref(b.Season, 0)),
		cmp.Compare(deref(a.Episode, 0), deref(b.Episode, 0)),
		CompareChronological(a, b),
	)
}

// SortChronological sorts items in place
func SortChronological(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return CompareChronological(a.Media, b.Media)
	})
}

// Etag fingerprints an ordered item list; any change in membership or order
// changes the etag
func Etag(items []Item) string {
	d := xxhash.New()
	var buf [8]byte
	for _, it := range items {
		binary.LittleEndian.PutUint64(buf[:], uint64(it.Media.ID))
		_, _ = d.Write(buf[:])
	}
	sum := make([]byte, 0, 8)
	sum = binary.BigEndian.AppendUint64(sum, d.Sum64())
	return hex.EncodeToString(sum)
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
