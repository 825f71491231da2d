package errors

// Network creates a transport or provider failure error
func Network(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeNetwork, message)
}

// NotFound creates a lookup-matched-nothing error
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// PermissionDenied creates a device geolocation denial error
func PermissionDenied(cause error) *AppError {
	return Wrap(cause, ErrCodePermissionDenied, "location permission denied")
}

// NoCapability creates an error for a platform without geolocation support
func NoCapability() *AppError {
	return New(ErrCodeNoCapability, "geolocation not available")
}

// InvalidInput creates a local validation error
func InvalidInput(reason string) *AppError {
	return New(ErrCodeInvalidInput, reason)
}
