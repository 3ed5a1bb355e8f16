package toc

import "sort"

// Heading is one table-of-contents entry.
// Y is nil when the source element carried no usable bounds.
type Heading struct {
	Title      string   `json:"title"`
	PageNumber int      `json:"pageNumber"`
	Y          *float64 `json:"y"`
}

// sortKey treats a missing Y as 0 without touching the record.
func (h Heading) sortKey() float64 {
	if h.Y == nil {
		return 0
	}
	return *h.Y
}

// SortHeadings orders headings by page, then vertical position. Ties keep
// their input order.
func SortHeadings(headings []Heading) {
	sort.SliceStable(headings, func(i, j int) bool {
		if headings[i].PageNumber != headings[j].PageNumber {
			return headings[i].PageNumber < headings[j].PageNumber
		}
		return headings[i].sortKey() < headings[j].sortKey()
	})
}
