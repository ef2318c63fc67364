package entry

// Merge combines two entries of the same service. Environments of primary
// come first, followed by those of secondary that are not already present as
// an identical pair. Since lookups resolve to the first match, primary wins
// conflicting environment names. Neither argument is modified.
func Merge(primary, secondary Entry) Entry {
	out := primary.clone()
	for _, d := range secondary.environments {
		if containsPair(out.environments, d.Pair()) {
			continue
		}
		out.environments = append(out.environments, d.clone())
	}
	return out
}

// MergeAll merges two ordered collections by service name.
//
// The result keeps the order of primary; entries of secondary sharing a name
// are merged into their primary counterpart, the remaining secondary entries
// are appended in their original order.
func MergeAll(primary, secondary []Entry) []Entry {
	byName := make(map[string]int, len(secondary))
	for i, e := range secondary {
		if _, ok := byName[e.name]; !ok {
			byName[e.name] = i
		}
	}

	out := make([]Entry, 0, len(primary)+len(secondary))
	used := make(map[string]bool, len(secondary))
	for _, e := range primary {
		if i, ok := byName[e.name]; ok {
			out = append(out, Merge(e, secondary[i]))
			used[e.name] = true
			continue
		}
		out = append(out, e.clone())
	}
	for _, e := range secondary {
		if used[e.name] {
			continue
		}
		used[e.name] = true
		out = append(out, e.clone())
	}
	return out
}

func containsPair(details []EnvironmentDetail, p Pair) bool {
	for _, d := range details {
		if d.Pair().Equal(p) {
			return true
		}
	}
	return false
}
