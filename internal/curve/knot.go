// Package curve implements the waveshaper transfer function: a piecewise
// exponential spline through up to MaxKnots control points, the lock-free
// store that publishes knot edits, and the automator that glides the
// evaluated curve toward the published knots.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// MaxKnots is the fixed knot capacity.
const MaxKnots = 15

// Knot coordinate and tension limits.
const (
	MinCoord   = -2.0
	MaxCoord   = 2.0
	MinTension = -20.0
	MaxTension = 20.0
)

// DefaultActiveKnots is the active count of a fresh store.
const DefaultActiveKnots = 3

// ErrKnotIndex is returned for a knot index outside 0..MaxKnots-1.
var ErrKnotIndex = errors.New("knot index out of range")

// Knot is one control point. Tension shapes the segment that starts at the
// knot; 0 is a straight line.
type Knot struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Tension float64 `yaml:"tension"`
}

// Clamped returns k with every field limited to its range.
func (k Knot) Clamped() Knot {
	return Knot{
		X:       clamp(k.X, MinCoord, MaxCoord),
		Y:       clamp(k.Y, MinCoord, MaxCoord),
		Tension: clamp(k.Tension, MinTension, MaxTension),
	}
}

// clamp limits v to [lo, hi]; NaN maps to the middle of the range.
func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return (lo + hi) / 2
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// KnotSet is an immutable snapshot of all knots. The first Active knots are
// in use; Sorted holds those knots ordered by x.
type KnotSet struct {
	Knots      [MaxKnots]Knot
	Active     int
	Generation uint64

	sorted [MaxKnots]Knot
}

// Sorted returns the active knots ordered by x. The slice aliases the
// snapshot and must not be modified.
func (ks *KnotSet) Sorted() []Knot {
	return ks.sorted[:ks.Active]
}

// seal orders the active prefix into sorted. Insertion sort keeps knots with
// equal x in index order.
func (ks *KnotSet) seal() {
	copy(ks.sorted[:], ks.Knots[:ks.Active])
	for i := 1; i < ks.Active; i++ {
		k := ks.sorted[i]
		j := i - 1
		for j >= 0 && ks.sorted[j].X > k.X {
			ks.sorted[j+1] = ks.sorted[j]
			j--
		}
		ks.sorted[j+1] = k
	}
}

// DefaultKnots returns the initial knot layout: an identity line through
// (-1,-1), (0,0) and (1,1), with the spare knots spread over the full range
// on the same line.
func DefaultKnots() [MaxKnots]Knot {
	var knots [MaxKnots]Knot
	knots[0] = Knot{X: -1, Y: -1}
	knots[1] = Knot{X: 0, Y: 0}
	knots[2] = Knot{X: 1, Y: 1}

	spare := MaxKnots - DefaultActiveKnots
	for i := range spare {
		x := MinCoord + (MaxCoord-MinCoord)*float64(i)/float64(spare-1)
		knots[DefaultActiveKnots+i] = Knot{X: x, Y: x}
	}
	return knots
}

// Store publishes knot edits to the audio thread. Writers are serialized by
// a mutex and every edit publishes a fresh snapshot; readers only perform an
// atomic load and never see a partially written set.
type Store struct {
	mu    sync.Mutex
	draft KnotSet
	cur   atomic.Pointer[KnotSet]
}

// NewStore returns a store holding DefaultKnots with DefaultActiveKnots active.
func NewStore() *Store {
	s := &Store{}
	s.draft.Knots = DefaultKnots()
	s.draft.Active = DefaultActiveKnots
	s.publishLocked()
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *KnotSet {
	return s.cur.Load()
}

func (s *Store) publishLocked() {
	s.draft.Generation++
	snap := s.draft
	snap.seal()
	s.cur.Store(&snap)
}

func (s *Store) edit(fn func(*KnotSet)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	s.publishLocked()
}

func checkIndex(i int) error {
	if i < 0 || i >= MaxKnots {
		return fmt.Errorf("%w: %d", ErrKnotIndex, i)
	}
	return nil
}

// SetKnot replaces knot i.
func (s *Store) SetKnot(i int, k Knot) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	k = k.Clamped()
	s.edit(func(ks *KnotSet) { ks.Knots[i] = k })
	return nil
}

// SetX sets the x coordinate of knot i.
func (s *Store) SetX(i int, x float64) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	x = clamp(x, MinCoord, MaxCoord)
	s.edit(func(ks *KnotSet) { ks.Knots[i].X = x })
	return nil
}

// SetY sets the y coordinate of knot i.
func (s *Store) SetY(i int, y float64) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	y = clamp(y, MinCoord, MaxCoord)
	s.edit(func(ks *KnotSet) { ks.Knots[i].Y = y })
	return nil
}

// SetTension sets the tension of knot i.
func (s *Store) SetTension(i int, t float64) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	t = clamp(t, MinTension, MaxTension)
	s.edit(func(ks *KnotSet) { ks.Knots[i].Tension = t })
	return nil
}

// SetActive sets how many leading knots are in use, clamped to 0..MaxKnots.
func (s *Store) SetActive(n int) {
	n = max(0, min(n, MaxKnots))
	s.edit(func(ks *KnotSet) { ks.Active = n })
}

// Replace sets every knot and the active count in a single snapshot. Knots
// beyond len(knots) keep their current values.
func (s *Store) Replace(knots []Knot, active int) {
	active = max(0, min(active, MaxKnots))
	s.edit(func(ks *KnotSet) {
		for i, k := range knots[:min(len(knots), MaxKnots)] {
			ks.Knots[i] = k.Clamped()
		}
		ks.Active = active
	})
}
