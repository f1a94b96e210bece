package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"
)

// Parser turns completion text into the JSON value returned to callers.
type Parser interface {
	Parse(op Operation, text string) (json.RawMessage, error)
}

// JSONParser accepts any JSON value and returns it unchanged apart from
// surrounding whitespace.
type JSONParser struct{}

func (JSONParser) Parse(_ Operation, text string) (json.RawMessage, error) {
	b := bytes.TrimSpace([]byte(text))
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("completion is not valid JSON: %w", err)
	}
	return json.RawMessage(b), nil
}

// SchemaChecker wraps a Parser and logs answers that stray from the
// documented shape. It never rejects an answer the wrapped parser accepted.
type SchemaChecker struct {
	next    Parser
	schemas map[Operation]*gojsonschema.Schema
	logger  *slog.Logger
}

func NewSchemaChecker(next Parser, logger *slog.Logger) (*SchemaChecker, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaChecker{next: next, schemas: schemas, logger: logger}, nil
}

func (s *SchemaChecker) Parse(op Operation, text string) (json.RawMessage, error) {
	raw, err := s.next.Parse(op, text)
	if err != nil {
		return nil, err
	}
	if err := s.Check(op, raw); err != nil {
		s.logger.Warn("completion shape mismatch", "op", op, "err", err)
	}
	return raw, nil
}

// Check validates raw against the documented shape for op.
func (s *SchemaChecker) Check(op Operation, raw json.RawMessage) error {
	schema, ok := s.schemas[op]
	if !ok {
		return nil
	}
	return validateAgainst(schema, raw)
}
