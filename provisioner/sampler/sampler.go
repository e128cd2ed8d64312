// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sampler implements the bounded random sampler spec.md §4.7
// uses to pick a novel subset of recent and active disputes when the
// recent set would otherwise overflow the runtime's dispute budget. It is
// adapted from the teacher's utils/sampler.Uniform swap-remove
// sampling, generalized from "pick k of n indices" to "extend an
// accumulator with up to n items not already present" and keyed on
// disputes' natural hashable identity instead of positional indices.
package sampler

import "math/rand"

// Extend appends up to n items of extension that are not already
// present in acc (by the Key function) to acc, and returns the
// result. If fewer than n novel items exist, all of them are
// appended. If more exist, n are chosen uniformly at random without
// replacement via swap-remove, so the sampler never allocates more
// than len(extension) scratch space and never blocks.
//
// rng is caller-owned so tests can inject a seeded source (design
// note §9: "for tests, inject a seeded source"); nil uses the package
// default, seeded from the runtime clock.
func Extend[T any, K comparable](acc []T, extension []T, n int, key func(T) K, rng *rand.Rand) []T {
	if n <= 0 || len(extension) == 0 {
		return acc
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	seen := make(map[K]struct{}, len(acc))
	for _, item := range acc {
		seen[key(item)] = struct{}{}
	}

	unique := make([]T, 0, len(extension))
	for _, item := range extension {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, item)
	}

	if len(unique) <= n {
		return append(acc, unique...)
	}

	for i := 0; i < n; i++ {
		idx := rng.Intn(len(unique))
		acc = append(acc, unique[idx])
		last := len(unique) - 1
		unique[idx] = unique[last]
		unique = unique[:last]
	}
	return acc
}
