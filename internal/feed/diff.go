package feed

import "github.com/mmcdole/filmora/internal/domain"

// Range is a half-open index range [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indexes in the range.
func (r Range) Len() int { return r.End - r.Start }

// SectionChange describes how one section's list changed: the rows in
// Removed (old indexes) were replaced by the rows in Inserted (new indexes).
type SectionChange struct {
	Section  domain.Section
	Removed  Range
	Inserted Range
}

// Diff compares two snapshots by item identity. Items are matched on the
// longest common ID prefix; everything after it counts as removed from
// before and inserted into after. An append therefore shows up as a pure
// insertion. Unchanged sections are omitted.
func Diff(before, after Snapshot) []SectionChange {
	var changes []SectionChange
	for _, sec := range domain.Sections {
		old, cur := before[sec], after[sec]

		p := 0
		for p < len(old) && p < len(cur) && old[p].Kind == cur[p].Kind && old[p].ID() == cur[p].ID() {
			p++
		}
		if p == len(old) && p == len(cur) {
			continue
		}
		changes = append(changes, SectionChange{
			Section:  sec,
			Removed:  Range{Start: p, End: len(old)},
			Inserted: Range{Start: p, End: len(cur)},
		})
	}
	return changes
}
