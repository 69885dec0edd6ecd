package mutate

import "fmt"

// ValidationError reports a malformed request field. It is raised before any
// allocation or write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
