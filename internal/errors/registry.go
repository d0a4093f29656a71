package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// Registered codes.
const (
	CodeMeasureFailed   = "E100"
	CodeTracksUnknown   = "E101"
	CodeCacheDisabled   = "E120"
	CodeTransport       = "E140"
	CodeTimeout         = "E141"
	CodeServerRejected  = "E160"
	CodeUnreadableError = "E161"
	CodeToggleConflict  = "E180"
	CodeUnknownList     = "E181"
	CodeInvalidConfig   = "E200"
	CodeConfigNotFound  = "E201"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Measurement Errors (E100-E119)
	// ============================================

	CodeMeasureFailed: {
		Category: CategoryMeasurement,
		Message:  "Item measurement failed",
	},
	CodeTracksUnknown: {
		Category: CategoryMeasurement,
		Message:  "Layout track count unavailable",
	},

	// ============================================
	// Cache Errors (E120-E139)
	// ============================================

	CodeCacheDisabled: {
		Category: CategoryCache,
		Message:  "Element is not opted into caching",
	},

	// ============================================
	// Transport Errors (E140-E159)
	// ============================================

	CodeTransport: {
		Category:   CategoryTransport,
		Message:    "Network error",
		Suggestion: "Check your connection and try again.",
	},
	CodeTimeout: {
		Category:   CategoryTransport,
		Message:    "Request timed out",
		Suggestion: "Try again in a moment.",
	},

	// ============================================
	// Server Errors (E160-E179)
	// ============================================

	CodeServerRejected: {
		Category: CategoryServer,
		Message:  "Request failed",
	},
	CodeUnreadableError: {
		Category: CategoryServer,
		Message:  "Request failed",
	},

	// ============================================
	// Conflict Errors (E180-E199)
	// ============================================

	CodeToggleConflict: {
		Category: CategoryConflict,
		Message:  "An update for this item is already in progress",
	},
	CodeUnknownList: {
		Category: CategoryConflict,
		Message:  "Unknown list",
	},

	// ============================================
	// Config Errors (E200-E219)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create swapgrid.json or run without --config to use defaults.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Sentinel errors for errors.Is comparisons.
var (
	ErrConflict  = &SwapError{Code: CodeToggleConflict}
	ErrTransport = &SwapError{Code: CodeTransport}
	ErrRejected  = &SwapError{Code: CodeServerRejected}
)
