package platformerrors

// Category groups error types the way the UI reports them.
type Category string

const (
	CategoryNone       Category = ""
	CategoryValidation Category = "ValidationError"
	CategoryAuth       Category = "AuthError"
	CategoryNetwork    Category = "NetworkError"
	CategoryServer     Category = "ServerError"
)

// CategoryOf maps an error type onto its reporting category.
// Timeouts are reported as server errors.
func CategoryOf(errorType ErrorType) Category {
	switch errorType {
	case ErrorTypeValidation:
		return CategoryValidation
	case ErrorTypeUnauthorized, ErrorTypeForbidden:
		return CategoryAuth
	case ErrorTypeNetwork:
		return CategoryNetwork
	default:
		return CategoryServer
	}
}

// ErrorCategory returns the category of err. Errors outside the platform
// taxonomy are server errors.
func ErrorCategory(err error) Category {
	if err == nil {
		return CategoryNone
	}
	if platformErr := GetPlatformError(err); platformErr != nil {
		return CategoryOf(platformErr.Type)
	}
	return CategoryServer
}

// UserMessage returns the banner text shown for a failed user action.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	platformErr := GetPlatformError(err)
	if platformErr == nil {
		return "Something went wrong, please try again."
	}
	switch platformErr.Type {
	case ErrorTypeValidation:
		return rootMessage(platformErr)
	case ErrorTypeUnauthorized:
		return "You must be logged in to do this."
	case ErrorTypeForbidden:
		return "You are not authorized to delete this."
	case ErrorTypeNetwork:
		return "Unable to reach the server, check your connection."
	case ErrorTypeTimeout:
		return "The server took too long to respond, please try again."
	default:
		return "Something went wrong, please try again."
	}
}

// rootMessage returns the message of the innermost PlatformError, which is the
// one written at the point of failure before any layer prefixes were added.
func rootMessage(err *PlatformError) string {
	current := err
	for {
		inner := GetPlatformError(current.Err)
		if inner == nil {
			return current.Message
		}
		current = inner
	}
}
