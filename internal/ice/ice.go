// Package ice ("internal compiler error") gives the "should not reach here"
// paths of spec.md §9 a distinct error domain instead of the original
// source's assert(false) idiom, preserving a wrapped cause chain via
// github.com/pkg/errors so a recovered panic at the cmd/floralc boundary
// can print where the impossible case actually originated.
package ice

import "github.com/pkg/errors"

// Unreachable panics with an internal-compiler-error wrapping msg. Every
// call site is a place the static analyzer was supposed to have already
// ruled out; reaching it is a bug in the compiler, not in the user's
// program.
func Unreachable(msg string) {
	panic(errors.Wrap(errors.New("internal compiler error"), msg))
}

// Unreachablef is Unreachable with Printf-style formatting.
func Unreachablef(format string, args ...any) {
	panic(errors.Wrapf(errors.New("internal compiler error"), format, args...))
}

// Wrap attaches msg to err as additional context, or returns nil if err is
// nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Recover turns a panic raised by Unreachable (or any other panic) into an
// error, for use at pass or CLI boundaries that must not crash the process.
func Recover(out *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*out = err
			return
		}
		*out = errors.Errorf("internal compiler error: %v", r)
	}
}
