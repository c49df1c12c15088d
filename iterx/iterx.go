// Package iterx carries small generic helpers for slices, maps, and
// sequences: batching, reservoir sampling, and multi-key lookup.
package iterx

import (
	"errors"
	"iter"
	"math"
	"math/rand/v2"
)

// Batched splits a slice into consecutive batches of at most n elements.
// The final batch may be shorter. Batches share backing storage with s.
func Batched[T any](s []T, n int) ([][]T, error) {
	if n < 1 {
		return nil, errors.New("batch size must be at least one")
	}
	var batches [][]T
	for len(s) > 0 {
		end := n
		if end > len(s) {
			end = len(s)
		}
		batches = append(batches, s[:end:end])
		s = s[end:]
	}
	return batches, nil
}

// Sample draws k elements uniformly at random from a sequence of unknown
// length in a single pass, holding only k elements in memory (reservoir
// sampling, Algorithm L). If the sequence has fewer than k elements they
// are all returned. A nil rng falls back to the shared global source.
func Sample[T any](seq iter.Seq[T], k int, rng *rand.Rand) []T {
	if k < 1 {
		return nil
	}
	next, stop := iter.Pull(seq)
	defer stop()

	res := make([]T, 0, k)
	for len(res) < k {
		v, ok := next()
		if !ok {
			return res
		}
		res = append(res, v)
	}

	uniform := rand.Float64
	intn := rand.IntN
	if rng != nil {
		uniform = rng.Float64
		intn = rng.IntN
	}

	kinv := 1 / float64(k)
	w := math.Pow(1-uniform(), kinv)
	for {
		// skip count is geometric in w
		skip := int(math.Floor(math.Log(1-uniform()) / math.Log1p(-w)))
		for ; skip > 0; skip-- {
			if _, ok := next(); !ok {
				return res
			}
		}
		v, ok := next()
		if !ok {
			return res
		}
		res[intn(k)] = v
		w *= math.Pow(1-uniform(), kinv)
	}
}

// Pick returns the subset of m holding the given keys. Keys absent from m
// are left out rather than mapped to a zero value.
func Pick[K comparable, V any](m map[K]V, keys ...K) map[K]V {
	out := make(map[K]V, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}
