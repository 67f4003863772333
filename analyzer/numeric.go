package analyzer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sample measurement. It holds either an exact 64-bit integer
// (what pprof records) or a float64. Integer arithmetic stays exact until it
// would overflow, at which point the result widens to float64 and loses
// precision for magnitudes beyond 2^53.
type Value struct {
	i       int64
	f       float64
	isFloat bool
}

// Int returns an exact integer Value.
func Int(v int64) Value { return Value{i: v} }

// Float returns a floating point Value.
func Float(v float64) Value { return Value{f: v, isFloat: true} }

// IsFloat reports whether v has been widened to floating point.
func (v Value) IsFloat() bool { return v.isFloat }

// Int64 returns the integer form of v. Floats are truncated and saturate at
// the int64 range; NaN yields 0.
func (v Value) Int64() int64 {
	if !v.isFloat {
		return v.i
	}
	switch {
	case math.IsNaN(v.f):
		return 0
	case v.f >= math.MaxInt64:
		return math.MaxInt64
	case v.f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v.f)
}

// IsZero reports whether v equals zero.
func (v Value) IsZero() bool {
	if v.isFloat {
		return v.f == 0
	}
	return v.i == 0
}

func (v Value) String() string {
	if v.isFloat {
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	}
	return strconv.FormatInt(v.i, 10)
}

// MarshalJSON encodes v as a bare JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isFloat {
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return nil, fmt.Errorf("cannot encode %v as JSON", v.f)
		}
		return json.Marshal(v.f)
	}
	return []byte(strconv.FormatInt(v.i, 10)), nil
}

// Add returns a+b. The sum is exact when both operands are integers and the
// result fits in an int64; otherwise both are coerced to float64.
func Add(a, b Value) Value {
	if !a.isFloat && !b.isFloat {
		sum := a.i + b.i
		// Overflow iff both operands share a sign the sum does not.
		if (a.i >= 0) == (b.i >= 0) && (sum >= 0) != (a.i >= 0) {
			return Float(float64(a.i) + float64(b.i))
		}
		return Int(sum)
	}
	return Float(ToFloat(a) + ToFloat(b))
}

// ToFloat converts v to float64.
func ToFloat(v Value) float64 {
	if v.isFloat {
		return v.f
	}
	return float64(v.i)
}

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to
// or greater than b.
func Compare(a, b Value) int {
	if !a.isFloat && !b.isFloat {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	fa, fb := ToFloat(a), ToFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

// Percent returns 100*value/total. Callers must not pass a zero total.
func Percent(value, total Value) float64 {
	return 100 * ToFloat(value) / ToFloat(total)
}
