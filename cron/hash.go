package cron

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// SeedFromName derives a spread seed from a stable name, such as the name of
// the job a schedule belongs to. Schedules for different names spread
// differently; the same name always spreads the same way.
func SeedFromName(name string) uint64 {
	return xxhash.Sum64String(name)
}

type intner interface {
	Intn(n int) int
}

// zeroRNG always picks the lowest value, which disables spreading.
type zeroRNG struct{}

func (zeroRNG) Intn(int) int { return 0 }

func newSeededRNG(seed uint64) intner {
	return rand.New(rand.NewSource(int64(seed)))
}

// hashedDoms is the number of days of month H may pick: only those that
// exist in every month.
const hashedDoms = 28

type hashedFields struct {
	rng    intner
	fields [5]int
}

// newHashedFields generates random schedule values from rng.
// The same schedule values are generated given the same sequence.
func newHashedFields(rng intner) *hashedFields {
	hf := &hashedFields{rng: rng}
	for fieldIndex := range hf.fields {
		n := fieldSizes[fieldIndex]
		if fieldIndex == 2 {
			n = hashedDoms
		}
		hf.fields[fieldIndex] = fieldMins[fieldIndex] + rng.Intn(n)
	}
	return hf
}
