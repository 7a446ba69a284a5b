// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package feed

import (
	"math/rand"

	"github.com/tomtom215/eventus/internal/models"
)

// ApplyExplorationMix blends exploitation and exploration: the top
// exploit share of the ranking plus a random sample of the remainder,
// shuffled together. The RNG is an explicit parameter so tests seed it
// for determinism.
func ApplyExplorationMix(ranked []models.ScoredItem, exploit float64, rng *rand.Rand) []models.ScoredItem {
	if len(ranked) == 0 {
		return ranked
	}
	if exploit < 0 {
		exploit = 0
	}
	if exploit > 1 {
		exploit = 1
	}

	cut := int(float64(len(ranked)) * exploit)
	top := ranked[:cut]
	rest := ranked[cut:]

	// Sample as many explore slots as remain after the exploit share.
	sampleSize := len(ranked) - cut
	sampled := make([]models.ScoredItem, 0, sampleSize)
	if sampleSize > 0 && len(rest) > 0 {
		perm := rng.Perm(len(rest))
		for _, idx := range perm[:sampleSize] {
			sampled = append(sampled, rest[idx])
		}
	}

	mixed := make([]models.ScoredItem, 0, len(top)+len(sampled))
	mixed = append(mixed, top...)
	mixed = append(mixed, sampled...)
	shuffle(mixed, rng)
	return mixed
}

// shuffle is an in-place Fisher-Yates shuffle over items.
func shuffle(items []models.ScoredItem, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
