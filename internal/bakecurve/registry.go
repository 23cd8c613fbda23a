package bakecurve

import "errors"

var (
	// ErrNoCurves is returned by Current when the registry holds no curves.
	ErrNoCurves = errors.New("no valid baking curve detected")

	// ErrCurveIndexOutOfRange is returned when selecting or looking up an
	// index outside [0, Count).
	ErrCurveIndexOutOfRange = errors.New("curve index out of range")
)

// Registry holds the normalized curves of one recording and tracks which one
// is current. It is not safe for concurrent use; callers serialize access.
type Registry struct {
	curves  []NormalizedCurve
	current int
}

// NewRegistry returns a registry loaded with curves.
func NewRegistry(curves []NormalizedCurve) *Registry {
	r := &Registry{}
	r.Load(curves)
	return r
}

// Load replaces any prior curves. The current index resets to 0, or to -1
// when curves is empty.
func (r *Registry) Load(curves []NormalizedCurve) {
	r.curves = curves
	if len(curves) == 0 {
		r.current = -1
		return
	}
	r.current = 0
}

// Select makes index current and returns that curve. An out-of-range index
// leaves the registry untouched.
func (r *Registry) Select(index int) (NormalizedCurve, error) {
	if index < 0 || index >= len(r.curves) {
		return NormalizedCurve{}, ErrCurveIndexOutOfRange
	}
	r.current = index
	return r.curves[index], nil
}

// Current returns the current curve, or ErrNoCurves when empty.
func (r *Registry) Current() (NormalizedCurve, error) {
	if r.current < 0 {
		return NormalizedCurve{}, ErrNoCurves
	}
	return r.curves[r.current], nil
}

// CurrentIndex returns the current index, or -1 when empty.
func (r *Registry) CurrentIndex() int {
	return r.current
}

// Curve returns the curve at index without changing the selection.
func (r *Registry) Curve(index int) (NormalizedCurve, error) {
	if index < 0 || index >= len(r.curves) {
		return NormalizedCurve{}, ErrCurveIndexOutOfRange
	}
	return r.curves[index], nil
}

// Count returns the number of curves.
func (r *Registry) Count() int {
	return len(r.curves)
}

// Summaries returns the summary of every curve in order.
func (r *Registry) Summaries() []CurveSummary {
	out := make([]CurveSummary, 0, len(r.curves))
	for _, c := range r.curves {
		out = append(out, c.Summary())
	}
	return out
}
