package models

// Error kinds reported in Diagnostic.Kind.
const (
	KindValidation      = "VALIDATION"
	KindParseError      = "PARSE_ERROR"
	KindAuth            = "AUTH"
	KindTimeout         = "TIMEOUT"
	KindNetwork         = "NETWORK"
	KindAPIError        = "API_ERROR"
	KindExtractionEmpty = "EXTRACTION_EMPTY"
	KindInvalidTool     = "INVALID_TOOL"
	KindUnknown         = "UNKNOWN"
)

// StatusNone is the sentinel status for failures that never reached HTTP.
const StatusNone = -1

// Diagnostic describes a failed tool call: what went wrong and what the
// caller can do about it.
type Diagnostic struct {
	Kind           string   `json:"kind"`
	Status         int      `json:"status"`
	StatusText     string   `json:"status_text,omitempty"`
	Message        string   `json:"message"`
	Body           string   `json:"body,omitempty"` // raw upstream body, capped
	PossibleCauses []string `json:"possible_causes,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`

	// ScrapingBee response headers, when the call reached the API
	CostCredits       string `json:"cost_credits,omitempty"`
	InitialStatusCode string `json:"initial_status_code,omitempty"`
	ResolvedURL       string `json:"resolved_url,omitempty"`
}

// Meta carries the significant upstream response headers on success.
type Meta struct {
	CostCredits       string `json:"cost_credits,omitempty"`
	InitialStatusCode string `json:"initial_status_code,omitempty"`
	ResolvedURL       string `json:"resolved_url,omitempty"`
}

// ToolResult is the envelope every tool call answers with, success or not.
type ToolResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *Diagnostic `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// HTMLPayload is the Data shape of get_page_html.
type HTMLPayload struct {
	HTML           string `json:"html"`
	Truncated      bool   `json:"truncated"`
	OriginalLength int    `json:"original_length"`
}

// ScreenshotPayload is the Data shape of get_screenshot. Only a bounded
// preview of the base64 body is embedded to respect message-size limits.
type ScreenshotPayload struct {
	Base64Preview string `json:"base64_preview"`
	EncodedLength int    `json:"encoded_length"`
	ContentType   string `json:"content_type,omitempty"`
}
