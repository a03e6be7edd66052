package services

// ServiceError carries an HTTP status alongside a user-safe message so
// controllers can map service failures without inspecting error chains.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}
