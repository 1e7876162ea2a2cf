package common

// Shared constants to enforce DRY and avoid magic strings/numbers.

// HTTP headers and content types
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	ContentTypeJSON     = "application/json"
)

// Auth
const (
	AuthSchemeBearer = "Bearer"
)

// MIME types
const (
	MimeImagePNG = "image/png"
)
