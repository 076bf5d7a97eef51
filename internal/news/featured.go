package news

// Featured builds the landing-page strip by rotating through the configured
// categories, taking the freshest unseen item from each in turn. Items with
// an image are preferred because the strip is visual; a category whose pool
// has no imagery at all still participates with what it has.
func Featured(byCategory map[string][]Item, rotation []string, count int) []Item {
	if count <= 0 || len(rotation) == 0 {
		return nil
	}

	pools := make(map[string][]Item, len(rotation))
	for _, cat := range rotation {
		all := ByRecency{}.Order(byCategory[cat])
		var withImage []Item
		for _, it := range all {
			if it.Image != "" {
				withImage = append(withImage, it)
			}
		}
		if len(withImage) > 0 {
			pools[cat] = withImage
		} else {
			pools[cat] = all
		}
	}

	pointers := make(map[string]int, len(rotation))
	seen := map[string]struct{}{}
	featured := make([]Item, 0, count)

	for len(featured) < count {
		progressed := false
		for _, cat := range rotation {
			if len(featured) >= count {
				break
			}
			pool := pools[cat]
			ptr := pointers[cat]
			for ptr < len(pool) {
				it := pool[ptr]
				ptr++
				if _, dup := seen[it.GUID]; !dup {
					featured = append(featured, it)
					seen[it.GUID] = struct{}{}
					progressed = true
					break
				}
			}
			pointers[cat] = ptr
		}
		if !progressed {
			break // every pool exhausted before reaching count
		}
	}
	return featured
}
