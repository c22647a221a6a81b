// Package random mints match seeds.
//
// Demo matches are deterministic given a seed; when the operator does not
// supply one, the tool mints a high-entropy seed here and prints it so the
// same match can be replayed later.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// MatchSeed mints a non-zero seed from crypto/rand. Zero is reserved at the
// call sites to mean "mint one for me", so a zero draw is retried.
func MatchSeed() (int64, error) {
	for {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read match seed: %w", err)
		}
		seed := int64(binary.LittleEndian.Uint64(b[:]))
		if seed != 0 {
			return seed, nil
		}
	}
}
