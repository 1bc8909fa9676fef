package brain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnsupportedContext is returned when a context element is neither a
// string nor a struct nor a list of those. This is a programming error on the
// caller's side, not a runtime condition to recover from.
var ErrUnsupportedContext = fmt.Errorf("context element must be a string, a struct, or a list thereof")

// ApplyBlockTag wraps content in an open/close tag pair. Used for the
// top-level prompt sections.
func ApplyBlockTag(name, content string) string {
	return fmt.Sprintf("\n<%s>\n%s\n</%s>\n", name, content, name)
}

// ApplyInlineTag is the lighter-weight delimiter (no closing tag) used for
// sub-annotations embedded inside the context section, e.g. labeling a block
// as "previous_strategy" or "current_time".
func ApplyInlineTag(name, content string) string {
	return fmt.Sprintf("<%s:\n%s\n", strings.ToUpper(name), content)
}

// BuildPrompt renders an LLMRequest into a single delimited text blob.
// Sections appear in fixed order: background, context, prompt, and
// expected_format when a schema is set. Empty background/context sections are
// skipped; the prompt section is always present.
func BuildPrompt(req LLMRequest) (string, error) {
	var b strings.Builder

	if req.Background != "" {
		b.WriteString(ApplyBlockTag("background", req.Background))
	}

	if req.Context != nil {
		rendered, err := renderContext(req.Context)
		if err != nil {
			return "", err
		}
		b.WriteString(ApplyBlockTag("context", rendered))
	}

	b.WriteString(ApplyBlockTag("prompt", req.Prompt))

	if req.ExpectedFormat != nil {
		instruction := "Return a single JSON object matching this JSON Schema:\n" +
			req.ExpectedFormat.Definition
		b.WriteString(ApplyBlockTag("expected_format", instruction))
	}

	return b.String(), nil
}

// renderContext turns the context field into text. Strings pass through
// verbatim. A struct renders as "TypeName: {json}". A list renders each
// element, joined by commas and wrapped in braces to visually group the items
// for the LLM reader (a convention only, nothing parses it downstream).
func renderContext(v any) (string, error) {
	if items, ok := v.([]any); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			rendered, err := renderItem(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
		return "{\n" + strings.Join(parts, ",\n") + "\n}", nil
	}
	return renderItem(v)
}

func renderItem(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	t := reflect.TypeOf(v)
	if t == nil {
		return "", ErrUnsupportedContext
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w; got %T", ErrUnsupportedContext, v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal context %s: %w", t.Name(), err)
	}
	return fmt.Sprintf("%s: %s", t.Name(), data), nil
}
