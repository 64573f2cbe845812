package scheduler

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// InferNameFromFunc returns the name of the function f without its package path.
// Closures are reported under the function that declares them, so the epoch callback
// created in run logs as "run" rather than "func1".
func InferNameFromFunc(f any) string {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func {
		log.Warn().Str("kind", v.Kind().String()).Msg("cannot infer name of a non-function")
		return "unknown"
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "unknown"
	}

	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	parts := strings.Split(name, ".")
	for len(parts) > 2 && isClosureName(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return parts[len(parts)-1]
}

func isClosureName(s string) bool {
	digits, ok := strings.CutPrefix(s, "func")
	if !ok || digits == "" {
		return false
	}
	return strings.Trim(digits, "0123456789") == ""
}
