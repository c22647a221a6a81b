package battle

import "math/rand"

// newRNG returns the deterministic random source for a recorded seed.
// Replays never call this; deck orders are carried by the events.
func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// shuffledDeck returns a shuffled copy of the card ids.
func shuffledDeck(cardIDs []string, rng *rand.Rand) []string {
	shuffled := append([]string(nil), cardIDs...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
