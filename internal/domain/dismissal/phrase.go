package dismissal

import "math/rand/v2"

// PickPhrase returns one of phrases chosen uniformly by r, or the empty
// string if there are none. The global source is used when r is nil.
func PickPhrase(r *rand.Rand, phrases []string) string {
	if len(phrases) == 0 {
		return ""
	}

	if r == nil {
		return phrases[rand.IntN(len(phrases))] //nolint:gosec // Display only.
	}

	return phrases[r.IntN(len(phrases))]
}
