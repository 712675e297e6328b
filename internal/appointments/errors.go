package appointments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an appointment is not found.
	ErrNotFound = errors.New("appointment not found")
)

// ValidationError reports the required fields absent from a booking request.
type ValidationError struct {
	MissingFields []string `json:"missingFields"`
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) == 0 {
		return "invalid booking request"
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}
