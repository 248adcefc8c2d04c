package assert

import "github.com/oomph-ac/railcart/oerror"

// IsTrue panics with an OomphError when ok is false. Used for invariants that only break on programming
// errors; the tick driver contains these panics per train.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}

// InRange panics when index is outside [0, length).
func InRange(index, length int, what string) {
	if index < 0 || index >= length {
		panic(oerror.New("%s index %d out of range [0, %d)", what, index, length))
	}
}
