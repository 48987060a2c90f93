package feed

import (
	"testing"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/stretchr/testify/assert"
)

func movieItems(ids ...int) []domain.FeedItem {
	out := make([]domain.FeedItem, len(ids))
	for i, id := range ids {
		out[i] = domain.MovieItem(domain.Movie{ID: id})
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		before   []domain.FeedItem
		after    []domain.FeedItem
		removed  Range
		inserted Range
		changed  bool
	}{
		{"unchanged", movieItems(1, 2), movieItems(1, 2), Range{}, Range{}, false},
		{"first load", nil, movieItems(1, 2), Range{0, 0}, Range{0, 2}, true},
		{"append", movieItems(1, 2), movieItems(1, 2, 3), Range{2, 2}, Range{2, 3}, true},
		{"reset to empty", movieItems(1, 2), nil, Range{0, 2}, Range{0, 0}, true},
		{"replaced tail", movieItems(1, 2, 3), movieItems(1, 9), Range{1, 3}, Range{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Diff(
				Snapshot{domain.SectionTopRated: tt.before},
				Snapshot{domain.SectionTopRated: tt.after},
			)
			if !tt.changed {
				assert.Empty(t, changes)
				return
			}
			assert.Equal(t, []SectionChange{{
				Section:  domain.SectionTopRated,
				Removed:  tt.removed,
				Inserted: tt.inserted,
			}}, changes)
		})
	}
}

func TestDiffComparesKindAndID(t *testing.T) {
	before := Snapshot{domain.SectionPopularPersons: {domain.PersonItem(domain.Person{ID: 7})}}
	after := Snapshot{domain.SectionPopularPersons: {domain.MovieItem(domain.Movie{ID: 7})}}

	changes := Diff(before, after)
	assert.Len(t, changes, 1)
	assert.Equal(t, 1, changes[0].Inserted.Len())
}

func TestDiffIgnoresDisplayFieldChanges(t *testing.T) {
	before := Snapshot{domain.SectionTrending: {domain.MovieItem(domain.Movie{ID: 1, Title: "Old"})}}
	after := Snapshot{domain.SectionTrending: {domain.MovieItem(domain.Movie{ID: 1, Title: "New"})}}

	assert.Empty(t, Diff(before, after))
}
