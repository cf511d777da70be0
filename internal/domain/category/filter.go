package category

// Matches reports whether categoryID belongs to the selected bucket.
//
// An empty selection matches everything. The remainder bucket matches any id not
// claimed by a named bucket; membership is recomputed from the current config on
// every call because buckets can be edited at any time.
func Matches(c Config, selected string, categoryID int) bool {
	if selected == "" {
		return true
	}
	if selected == RemainderName {
		return !claimed(c, categoryID)
	}
	for _, b := range c.Buckets {
		if b.Name != selected {
			continue
		}
		for _, id := range b.CategoryIDs {
			if id == categoryID {
				return true
			}
		}
		return false
	}
	return false
}

// BucketOf returns the name of the first bucket claiming categoryID, or the remainder name
func BucketOf(c Config, categoryID int) string {
	for _, b := range c.Buckets {
		for _, id := range b.CategoryIDs {
			if id == categoryID {
				return b.Name
			}
		}
	}
	return RemainderName
}

// Available returns, in config order, the bucket names that match at least one
// of the given category ids (used to build the filter bar for a roster)
func Available(c Config, categoryIDs []int) []string {
	hit := make(map[string]bool)
	for _, id := range categoryIDs {
		hit[BucketOf(c, id)] = true
	}
	var out []string
	for _, name := range c.Names() {
		if hit[name] {
			out = append(out, name)
		}
	}
	return out
}

func claimed(c Config, categoryID int) bool {
	for _, b := range c.Buckets {
		for _, id := range b.CategoryIDs {
			if id == categoryID {
				return true
			}
		}
	}
	return false
}
