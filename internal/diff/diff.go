// Package diff computes which listings newly appeared between two cycles.
package diff

import "h2s_bot/internal/model"

// NewListings returns every listing present in current but absent from
// prior, compared by the full attribute tuple. It is pure and
// order-independent; NewListings(s, s) is always empty.
func NewListings(prior, current model.ListingSet) []model.Listing {
	var fresh []model.Listing
	for l := range current {
		if _, seen := prior[l]; !seen {
			fresh = append(fresh, l)
		}
	}
	return fresh
}
