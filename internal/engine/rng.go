package engine

import "math/rand"

// RNG yields values in [0, 1). Every stochastic decision in the engine goes
// through one of these, so a battle is fully determined by its action
// sequence plus the RNG stream.
type RNG func() float64

// NewSeededRNG returns a deterministic RNG from a seed.
func NewSeededRNG(seed int64) RNG {
	r := rand.New(rand.NewSource(seed))
	return r.Float64
}

// FixedRNG always returns v. Search uses 0.5 to pin rolls to their median.
func FixedRNG(v float64) RNG {
	return func() float64 { return v }
}

// RecordingRNG wraps an RNG and appends every drawn value to a log, in draw
// order. The log is what battle history stores per turn.
type RecordingRNG struct {
	inner RNG
	Drawn []float64
}

// NewRecordingRNG wraps inner with a recorder.
func NewRecordingRNG(inner RNG) *RecordingRNG {
	return &RecordingRNG{inner: inner}
}

// Next draws one value and records it.
func (r *RecordingRNG) Next() float64 {
	v := r.inner()
	r.Drawn = append(r.Drawn, v)
	return v
}

// RNG returns the recorder as a plain RNG.
func (r *RecordingRNG) RNG() RNG {
	return r.Next
}
