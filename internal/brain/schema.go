package brain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"giga_trading/internal/models"
)

// Schema is a first-class description of the format an LLM answer must
// satisfy: the JSON Schema text shown to the model, the compiled validator,
// and a factory for the Go type the validated answer is decoded into.
type Schema struct {
	Name       string
	Definition string // JSON Schema text, rendered into the prompt
	compiled   *jsonschema.Schema
	newValue   func() any
}

const strategyResponseSchemaJSON = `{
  "type": "object",
  "properties": {
    "strategy_report": {"type": "string"},
    "stock_symbols_to_watch": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["strategy_report", "stock_symbols_to_watch"],
  "additionalProperties": false
}`

const relativePortfolioSchemaJSON = `{
  "type": "object",
  "$defs": {
    "rule": {
      "type": "object",
      "properties": {
        "stop_loss_pct": {"type": ["number", "null"]},
        "take_profit_pct": {"type": ["number", "null"]}
      }
    }
  },
  "properties": {
    "positions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "symbol": {"type": "string"},
          "percent_of_portfolio": {"type": "number", "minimum": 0, "maximum": 1},
          "rules": {"anyOf": [{"$ref": "#/$defs/rule"}, {"type": "null"}]}
        },
        "required": ["symbol", "percent_of_portfolio"]
      }
    },
    "percent_cash": {"type": "number", "minimum": 0, "maximum": 1}
  },
  "required": ["positions", "percent_cash"],
  "additionalProperties": false
}`

// StrategyResponseSchema constrains the "generate strategy" pipeline answer.
var StrategyResponseSchema = mustSchema(
	"strategy_response",
	strategyResponseSchemaJSON,
	func() any { return &models.StrategyResponse{} },
)

// RelativePortfolioSchema constrains the "portfolio update" pipeline answer.
var RelativePortfolioSchema = mustSchema(
	"relative_portfolio",
	relativePortfolioSchemaJSON,
	func() any { return &models.RelativePortfolio{} },
)

func mustSchema(name, definition string, newValue func() any) *Schema {
	return &Schema{
		Name:       name,
		Definition: definition,
		compiled:   jsonschema.MustCompileString(name+".json", definition),
		newValue:   newValue,
	}
}

// Decode validates a raw LLM answer against the schema and unmarshals it into
// a fresh value of the target type. Any parse or schema failure is terminal
// for the call; repair retries are the transport's business, not ours.
func (s *Schema) Decode(raw string) (any, error) {
	text := ExtractJSONObject(raw)

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("answer is not valid JSON: %w", err)
	}
	if err := s.compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("answer does not satisfy %s schema: %w", s.Name, err)
	}

	v := s.newValue()
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Name, err)
	}
	return v, nil
}

// ExtractJSONObject pulls the first balanced JSON object out of a model
// answer, tolerating markdown fences and prose around it. Returns the input
// unchanged when no object is found, letting Decode surface the parse error.
func ExtractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return s
	}
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				inString = !inString
			}
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return strings.TrimSpace(s[start : i+1])
				}
			}
		}
	}
	return s
}
