package engine

import (
	"sort"
)

// =============================================================================
// PROMOTION INDEX - Interval lookups by store
// =============================================================================

// PromotionIndex answers overlap queries against promotion date ranges
// without a per-row scan over the whole promotion table. Intervals are
// bucketed by store and sorted by end date, so a query is a binary search
// plus a walk over the tail that can still overlap. Immutable after
// construction; safe for concurrent reads.
type PromotionIndex struct {
	byStore map[StoreID][]Promotion
}

func NewPromotionIndex(promos []Promotion) *PromotionIndex {
	byStore := make(map[StoreID][]Promotion)
	for _, p := range promos {
		byStore[p.StoreID] = append(byStore[p.StoreID], p)
	}
	for id := range byStore {
		list := byStore[id]
		sort.Slice(list, func(i, j int) bool { return list[i].End.Before(list[j].End) })
	}
	return &PromotionIndex{byStore: byStore}
}

// ActiveOn reports whether any promotion covers the given day
// (ranges are inclusive on both ends).
func (idx *PromotionIndex) ActiveOn(store StoreID, day Day) bool {
	return idx.AnyOverlapping(store, day, day)
}

// AnyOverlapping reports whether any of the store's promotions overlaps
// the inclusive window [from, to].
func (idx *PromotionIndex) AnyOverlapping(store StoreID, from, to Day) bool {
	list := idx.byStore[store]
	if len(list) == 0 {
		return false
	}

	// Skip promotions that ended before the window opens; everything from
	// here on has End >= from, so only the start bound remains to check.
	first := sort.Search(len(list), func(i int) bool {
		return list[i].End.AfterOrEqual(from)
	})
	for _, p := range list[first:] {
		if p.Start.BeforeOrEqual(to) {
			return true
		}
	}
	return false
}
