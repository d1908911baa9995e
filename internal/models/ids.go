package models

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DiffIDs compares the current link set with the wanted one. Links present
// in both are left alone.
func DiffIDs(current, wanted []string) (toRemove, toAdd []string) {
	cur := make(map[string]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	want := make(map[string]struct{}, len(wanted))
	for _, id := range UniqueIDs(wanted) {
		want[id] = struct{}{}
		if _, ok := cur[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range UniqueIDs(current) {
		if _, ok := want[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	return toRemove, toAdd
}
