package stage

import "fmt"

// MalformedOutputError reports model output that could not be decoded into
// the stage's wire schema at all.
type MalformedOutputError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s stage produced malformed output: %v", e.Stage, e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// SchemaValidationError reports decodable model output that violates the
// stage's schema, such as a missing required field or an unknown action.
type SchemaValidationError struct {
	Stage string
	Err   error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s stage output failed schema validation: %v", e.Stage, e.Err)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}
