// Package stereo holds the two-channel value type and the mid-side transform.
package stereo

// Vec2 is one value per channel, left (or mid) first.
type Vec2 [2]float64

// Splat returns a Vec2 with both channels set to v.
func Splat(v float64) Vec2 { return Vec2{v, v} }

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a[0] + b[0], a[1] + b[1]} }

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a[0] - b[0], a[1] - b[1]} }

// Mul returns the per-channel product.
func (a Vec2) Mul(b Vec2) Vec2 { return Vec2{a[0] * b[0], a[1] * b[1]} }

// Scale returns a * s.
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a[0] * s, a[1] * s} }

// Product returns a[0] * a[1].
func (a Vec2) Product() float64 { return a[0] * a[1] }

const half = 0.5

// Encode converts a left/right pair to mid/side.
func Encode(l, r float64) (mid, side float64) {
	return half * (l + r), half * (l - r)
}

// Decode converts a mid/side pair back to left/right.
func Decode(mid, side float64) (l, r float64) {
	return mid + side, mid - side
}

// EncodeBlock converts two equally long buffers to mid/side in place.
func EncodeBlock(left, right []float64) {
	right = right[:len(left)]
	for i := range left {
		left[i], right[i] = Encode(left[i], right[i])
	}
}

// DecodeBlock converts two equally long mid/side buffers back to left/right
// in place.
func DecodeBlock(mid, side []float64) {
	side = side[:len(mid)]
	for i := range mid {
		mid[i], side[i] = Decode(mid[i], side[i])
	}
}
