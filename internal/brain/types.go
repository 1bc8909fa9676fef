package brain

import "context"

// LLMRequest is the structured input for one LLM round-trip. It is built per
// call and never persisted directly; the rendered prompt text is what ends up
// in the action log.
//
// Context may be a plain string, a single struct, or a []any mixing structs
// and strings. Anything else is a programming error (see BuildPrompt).
type LLMRequest struct {
	Prompt         string
	Background     string
	Context        any
	ExpectedFormat *Schema // nil: the raw answer string is returned as-is
}

// Answer is the result of one LLM round-trip. Value is non-nil only when the
// request carried an expected format; it then holds a pointer to the decoded
// target type. Query keeps the rendered prompt for audit logging.
type Answer struct {
	Query string // The rendered prompt that was submitted
	Raw   string // The raw textual answer from the transport
	Value any    // Decoded value when ExpectedFormat was set, else nil
}

// Brain is the capability interface the orchestrator consumes. Console and
// networked backends are swappable implementations behind it.
type Brain interface {
	Ask(ctx context.Context, req LLMRequest) (*Answer, error)
}

// Transport is the opaque network boundary: it submits rendered prompt text
// and returns the raw textual answer. Retries, auth and timeouts live here,
// not in the core.
type Transport interface {
	SubmitQuery(ctx context.Context, query string) (string, error)
}
