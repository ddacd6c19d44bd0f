package frame

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// IterInstances returns an iterator over all placements known to the visitor.
// Iteration may panic on unrecoverable errors.
func IterInstances(v InstanceVisitor) iter.Seq[Instance] {
	return func(yield func(Instance) bool) {
		err := v.VisitInstances(func(inst Instance) error {
			if !yield(inst) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}
