package interest

import "strings"

// Known is the fixed allow-list of interest labels counted in the global
// popularity ledger. Free-text interests still participate in matching but
// are never counted, keeping the ledger's label space bounded.
var Known = []string{
	"Gaming", "Anime", "Memes", "Music", "Hip-Hop",
	"K-Pop", "Movies", "Netflix", "Comedy", "Tech",
	"Crypto", "Science", "Art", "Photography", "Fashion",
	"Fitness", "Sports", "Food", "Books", "Travel",
}

var display = func() map[string]string {
	m := make(map[string]string, len(Known))
	for _, label := range Known {
		m[strings.ToLower(label)] = label
	}
	return m
}()

// Allowed reports whether a normalized label is on the allow-list.
func Allowed(label string) bool {
	_, ok := display[label]
	return ok
}

// Display returns the canonical casing for a normalized label, or the label
// itself for free-text interests.
func Display(label string) string {
	if canonical, ok := display[label]; ok {
		return canonical
	}
	return label
}

// Normalize lower-cases, trims, deduplicates, and caps a declared interest
// list. Comparison throughout the matchmaking core happens on the
// normalized form.
func Normalize(interests []string, limit int) []string {
	if len(interests) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(interests))
	out := make([]string, 0, len(interests))
	for _, raw := range interests {
		label := strings.ToLower(strings.TrimSpace(raw))
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Intersect returns the labels present in both normalized sets, in the
// order they appear in a.
func Intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	other := make(map[string]struct{}, len(b))
	for _, label := range b {
		other[label] = struct{}{}
	}

	var common []string
	for _, label := range a {
		if _, ok := other[label]; ok {
			common = append(common, label)
		}
	}
	return common
}

// Counted filters a normalized interest list down to allow-listed labels.
func Counted(interests []string) []string {
	var out []string
	for _, label := range interests {
		if Allowed(label) {
			out = append(out, label)
		}
	}
	return out
}
