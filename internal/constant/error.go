package constant

const (
	ERR_VALIDATION_CODE            = "VALIDATION_ERROR"
	ERR_UNAUTHENTICATED_CODE       = "UNAUTHENTICATED_ERROR"
	ERR_TRANSIENT_CODE             = "TRANSIENT_TRANSPORT_ERROR"
	ERR_SERVER_REJECTED_CODE       = "SERVER_REJECTED_ERROR"
	ERR_SERVER_REJECTED_MESSAGE    = "The server rejected the request"
	ERR_UNAUTHENTICATED_MESSAGE    = "You need to sign in to do this"
	ERR_TRANSIENT_MESSAGE          = "Network is unstable. Please try again"
	ERR_MALFORMED_RESPONSE_MESSAGE = "The server response could not be read"
)
