package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Limit is a plan quota: either a concrete count or unbounded. Unbounded is a
// distinct state, not a large number, and always allows the action.
type Limit struct {
	unbounded bool
	value     int64
}

func Bounded(n int64) Limit {
	return Limit{value: n}
}

func Unbounded() Limit {
	return Limit{unbounded: true}
}

func (l Limit) IsUnbounded() bool {
	return l.unbounded
}

// Value returns the bounded value; meaningless when IsUnbounded.
func (l Limit) Value() int64 {
	return l.value
}

// Allows reports whether an action is still permitted at the given usage.
// Comparison is strict less-than: a limit of 10 permits the 10th action.
func (l Limit) Allows(used int64) bool {
	return l.unbounded || used < l.value
}

func (l Limit) String() string {
	if l.unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", l.value)
}

// MarshalJSON encodes a bounded limit as a number and an unbounded one as the
// string "unbounded", so the frontend never sees a sentinel integer.
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unbounded {
		return json.Marshal("unbounded")
	}
	return json.Marshal(l.value)
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "unbounded" {
			return fmt.Errorf("invalid limit %q", s)
		}
		*l = Unbounded()
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative limit %d", n)
	}
	*l = Bounded(n)
	return nil
}
