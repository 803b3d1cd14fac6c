// Package rng provides the single seeded deterministic draw stream spec.md
// Section 3 and Section 9 require: every draw is keyed by
// (frame, sourceId, purposeTag) so that unrelated behavior elsewhere in a
// frame never shifts the observed draw order for a given purpose.
package rng

import "hash/fnv"

// Stream is a seeded xorshift64-based deterministic generator. It is safe
// for single-threaded use only, matching the frame loop's single mutation
// point (spec.md Section 5).
type Stream struct {
	seed uint64
}

// NewStream seeds a stream. The same seed always yields the same sequence
// of Draw results for the same (frame, sourceID, purpose) keys.
func NewStream(seed uint64) *Stream {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &Stream{seed: seed}
}

// keyedState derives a fresh xorshift64 state from (seed, frame, sourceID,
// purpose) so draws never depend on call order within a frame — only on
// the key itself.
func (s *Stream) keyedState(frame int64, sourceID int64, purpose string) uint64 {
	h := fnv.New64a()
	var buf [24]byte
	putInt64(buf[0:8], frame)
	putInt64(buf[8:16], sourceID)
	_, _ = h.Write(buf[:16])
	_, _ = h.Write([]byte(purpose))
	mixed := h.Sum64() ^ s.seed
	if mixed == 0 {
		mixed = 0xA5A5A5A5A5A5A5A5
	}
	return mixed
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

func xorshift64(x uint64) uint64 {
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}

// Draw returns a deterministic float64 in [0, 1) for the given purpose key.
func (s *Stream) Draw(frame int64, sourceID int64, purpose string) float64 {
	x := xorshift64(s.keyedState(frame, sourceID, purpose))
	// Top 53 bits give a uniform double in [0,1).
	return float64(x>>11) / (1 << 53)
}

// DrawInt returns a deterministic integer in [0, n) for the given purpose
// key. Panics if n <= 0, mirroring the standard library's convention.
func (s *Stream) DrawInt(frame int64, sourceID int64, purpose string, n int) int {
	if n <= 0 {
		panic("rng: DrawInt n must be positive")
	}
	x := xorshift64(s.keyedState(frame, sourceID, purpose))
	return int(x % uint64(n))
}

// DrawWeighted picks an index in [0, len(weights)) proportionally to the
// weights (spec.md SlowDeath's "selects among available modules by
// ProbabilityModifier weights"). Zero or negative total weight returns 0.
func (s *Stream) DrawWeighted(frame int64, sourceID int64, purpose string, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	r := s.Draw(frame, sourceID, purpose) * total
	acc := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}
