package commons

// Response is the envelope every handler and service returns: account and
// transaction payloads ride in Data on success, validation reasons and
// failure details ride in Errors.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// SuccessResponse wraps a settled result, such as a created transaction.
func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

// ErrorResponse reports a rejected or failed operation; the optional
// detail strings surface the individual validation reasons.
func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}
