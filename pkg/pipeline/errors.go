package pipeline

import "fmt"

// DependencyError marks a failure of an infrastructure dependency the
// pipeline cannot degrade around, such as the conversation store or the
// embedding service. These surface to the caller as hard errors.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
