package lingocache

import "github.com/ZaguanLabs/lingocache/cache"

// SelectExamples picks up to max already-accepted pairs to hand the
// generator as consistency context. When the partition holds more than max
// entries, the most recently inserted ones win; there is no relevance
// scoring.
func SelectExamples(entries []cache.Entry, max int) map[string]string {
	if max <= 0 || len(entries) == 0 {
		return nil
	}
	if len(entries) > max {
		entries = entries[len(entries)-max:]
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Source] = e.Target
	}
	return out
}
