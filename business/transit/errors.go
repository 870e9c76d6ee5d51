package transit

import "fmt"

// UpstreamError indicates an upstream agency returned a structured error
// payload. The upstream message is forwarded to callers verbatim.
type UpstreamError struct {
	Agency  string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s reported an error: %s", e.Agency, e.Message)
}

// UpstreamStatusError indicates an upstream agency endpoint answered with a
// non-success http status.
type UpstreamStatusError struct {
	Agency     string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s request returned status %d", e.Agency, e.StatusCode)
}

// NotFoundError indicates a stop, route or direction is absent from the
// route's topology.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// UnsupportedAgencyError indicates a caller named an agency this system does
// not aggregate.
type UnsupportedAgencyError struct {
	Agency string
}

func (e *UnsupportedAgencyError) Error() string {
	return fmt.Sprintf("unsupported agency %q", e.Agency)
}

// MissingParameterError indicates a caller omitted a parameter the requested
// agency requires.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Name)
}
