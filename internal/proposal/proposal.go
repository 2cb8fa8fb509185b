// Package proposal models the experiment proposals a user can log in to.
package proposal

import "sort"

// Item is a scheduled proposal as delivered by the user office.
type Item struct {
	ProposalID string `json:"proposalId"`
	Code       string `json:"code"`
	Number     string `json:"number"`
	Title      string `json:"title"`
	Person     string `json:"person"`
}

// DisplayID is the composite identifier shown to users, e.g. "mx1234".
func (it Item) DisplayID() string {
	return it.Code + it.Number
}

// SortedByNumber returns a new slice ordered by Number descending using plain
// string comparison. The input is left untouched; equal numbers keep their
// input order.
func SortedByNumber(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Number > out[j].Number
	})
	return out
}

// Find returns the item whose DisplayID equals id.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.DisplayID() == id {
			return it, true
		}
	}
	return Item{}, false
}
