package predictor

// invalidInputError marks a request the models cannot be evaluated on (400).
type invalidInputError struct{ msg string }

func (e invalidInputError) Error() string { return e.msg }

// ErrInvalidInput constructs an invalidInputError.
func ErrInvalidInput(msg string) error { return invalidInputError{msg: msg} }

// IsInvalidInput reports whether err was caused by the request itself.
func IsInvalidInput(err error) bool {
	_, ok := err.(invalidInputError)
	return ok
}

// modelUnavailableError signals that the artifact a request needs was not
// loaded, so the HTTP layer can return 503 instead of 500.
type modelUnavailableError struct{ model string }

func (e modelUnavailableError) Error() string { return "model not loaded: " + e.model }

// ErrModelUnavailable constructs a modelUnavailableError.
func ErrModelUnavailable(model string) error { return modelUnavailableError{model: model} }

// IsModelUnavailable reports whether err indicates a missing model artifact.
func IsModelUnavailable(err error) bool {
	_, ok := err.(modelUnavailableError)
	return ok
}
