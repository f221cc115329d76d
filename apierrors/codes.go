package apierrors

// Stable error codes. The code is the only field callers should branch on.
const (
	CodeValidation        = "validation_error"
	CodeInternal          = "internal_error"
	CodeOverCapacity      = "over_capacity"
	CodeNetworkException  = "network_exception"
	CodeTimeout           = "timeout"
	CodeInvalidJSON       = "invalid_json"
	CodeInvalidRequest    = "invalid_request"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeRefreshTokenReuse = "refresh_token_reuse"
	CodeNoSession         = "no_session"
	CodeUnknown           = "unknown_error"

	CodeUploadTooLarge        = "upload_too_large"
	CodeUnsupportedFileType   = "unsupported_file_type"
	CodeInvalidURLScheme      = "invalid_url_scheme"
	CodeInvalidURL            = "invalid_url"
	CodeBlockedHost           = "blocked_host"
	CodeBlockedPrivateNetwork = "blocked_private_network"
	CodeDNSResolutionFailed   = "dns_resolution_failed"
	CodeNetworkHTTPError      = "network_http_error"
	CodeNetworkURLError       = "network_url_error"
	CodeNetworkTimeout        = "network_timeout"
	CodeFileNotFound          = "file_not_found"
	CodeExtractTimeout        = "extract_timeout"
	CodeAPIKeyDisabled        = "api_key_disabled"
)
