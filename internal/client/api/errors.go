package api

// ServerError is an application-level rejection: the server was reachable
// and answered with error=true. The message is surfaced to the user
// verbatim and the submission is never queued locally.
type ServerError struct {
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	return e.Message
}
