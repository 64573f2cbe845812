package yumamath

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is wrapped by the panic raised when operand lengths disagree.
var ErrShapeMismatch = errors.New("yumamath: shape mismatch")

func requireShape(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...)))
	}
}

func requireSameLen(op string, a, b int) {
	requireShape(a == b, "%s: lengths %d and %d", op, a, b)
}
