package httputil

// Machine-readable error codes returned alongside HTTP error responses.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"

	CodeInvalidCredentials = "invalid_credentials"
	CodeUserAlreadyExists  = "user_already_exists"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeAlreadyVerified    = "already_verified"
	CodeNotVerified        = "not_verified"
	CodeNotActive          = "not_active"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"

	CodeValidationFailed   = "validation_failed"
	CodeCategoryExists     = "category_exists"
	CodeProfileExists      = "profile_exists"
	CodeEmailRequired      = "email_required"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"
	CodeInvalidEmailFormat = "invalid_email_format"
)
