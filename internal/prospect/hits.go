package prospect

// DedupHits removes duplicate search hits by URL, keeping the first-seen
// occurrence and its query metadata. Order of first occurrence is preserved,
// so applying it twice yields the same list.
func DedupHits(hits []*SearchHit) []*SearchHit {
	seen := make(map[string]struct{}, len(hits))
	deduped := make([]*SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit == nil || hit.URL == "" {
			continue
		}
		if _, ok := seen[hit.URL]; ok {
			continue
		}
		seen[hit.URL] = struct{}{}
		deduped = append(deduped, hit)
	}
	return deduped
}
