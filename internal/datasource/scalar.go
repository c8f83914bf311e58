package datasource

import (
	"strconv"
	"time"
)

// Kind tags the concrete type a Scalar carries, closing the type switch
// every caller of Row needs so the Composer/Evaluator/Runner never import
// a driver package directly.
type Kind int

const (
	KindNull Kind = iota
	KindInt64
	KindFloat64
	KindBool
	KindString
	KindTime
)

// Scalar is the normalized value one column of one result row holds,
// after a driver's native type has been collapsed into the engine's
// closed set.
type Scalar struct {
	Kind  Kind
	I     int64
	F     float64
	B     bool
	S     string
	T     time.Time
}

// Float64 returns the scalar as a float64, widening Int64 and Bool
// (true -> 1, false -> 0) the way aggregate measures expect. ok is false
// for Null, String, or Time.
func (s Scalar) Float64() (float64, bool) {
	switch s.Kind {
	case KindFloat64:
		return s.F, true
	case KindInt64:
		return float64(s.I), true
	case KindBool:
		if s.B {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// IsNull reports whether the column held SQL NULL.
func (s Scalar) IsNull() bool { return s.Kind == KindNull }

// String renders the scalar for dimension-value grouping keys and
// diagnostics.
func (s Scalar) String() string {
	switch s.Kind {
	case KindNull:
		return ""
	case KindInt64:
		return strconv.FormatInt(s.I, 10)
	case KindFloat64:
		return strconv.FormatFloat(s.F, 'g', -1, 64)
	case KindBool:
		if s.B {
			return "true"
		}
		return "false"
	case KindTime:
		return s.T.UTC().Format(time.RFC3339)
	default:
		return s.S
	}
}

