package news

// Orderer decides the final presentation order of a category's items after
// capping. It is a seam for presentation preferences: swapping strategies
// must never touch the dedup/cap/validate core.
type Orderer interface {
	Order(items []Item) []Item
}

// ByRecency keeps the plain newest-first order.
type ByRecency struct{}

func (ByRecency) Order(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sortByRecency(out)
	return out
}

// SourceInterleave round-robins across sources so no single publisher
// dominates the visible head of a category. Items are expected newest-first;
// each source's internal order is preserved.
type SourceInterleave struct{}

func (SourceInterleave) Order(items []Item) []Item {
	if len(items) == 0 {
		return items
	}

	var sources []string
	buckets := map[string][]Item{}
	for _, it := range items {
		if _, ok := buckets[it.Source]; !ok {
			sources = append(sources, it.Source)
		}
		buckets[it.Source] = append(buckets[it.Source], it)
	}

	out := make([]Item, 0, len(items))
	for round := 0; len(out) < len(items); round++ {
		for _, src := range sources {
			if bucket := buckets[src]; round < len(bucket) {
				out = append(out, bucket[round])
			}
		}
	}
	return out
}
