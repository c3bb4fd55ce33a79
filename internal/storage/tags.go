package storage

// Tag reconciliation: both backends store the tag set a caller asked
// for, exactly. The document store replaces the embedded array; the
// relational store applies the minimal inserts and deletes computed
// here inside the same transaction that updates the requirement row.

// normalizeTags deduplicates a tag list, dropping empty strings and
// preserving first-seen order. A nil input yields an empty, non-nil
// slice so callers always get a materialized set.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// diffTags computes the minimal set operations that transform current
// into desired: toAdd = desired − current, toRemove = current − desired.
// Both inputs are treated as sets over tag string equality; the result
// is correct when either side is empty.
func diffTags(current, desired []string) (toAdd, toRemove []string) {
	cur := make(map[string]struct{}, len(current))
	for _, t := range current {
		cur[t] = struct{}{}
	}
	des := make(map[string]struct{}, len(desired))
	for _, t := range desired {
		des[t] = struct{}{}
	}

	for _, t := range desired {
		if _, ok := cur[t]; !ok {
			toAdd = append(toAdd, t)
		}
	}
	for _, t := range current {
		if _, ok := des[t]; !ok {
			toRemove = append(toRemove, t)
		}
	}
	return toAdd, toRemove
}
