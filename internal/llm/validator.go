package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/aaronromeo/fitcoach/internal/workout"
)

// documentedShapes are the answers each prompt asks for.
var documentedShapes = map[Operation]any{
	OpGenerateProgram:   &workout.WorkoutProgram{},
	OpRecommendExercise: &workout.Recommendation{},
	OpAnalyzeProgress:   &workout.ProgressionAnalysis{},
}

// ReflectSchema derives a draft-07 JSON schema from a Go type.
func ReflectSchema(v any) ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	s := r.Reflect(v)
	s.Version = "http://json-schema.org/draft-07/schema#"
	return json.Marshal(s)
}

func compileSchemas() (map[Operation]*gojsonschema.Schema, error) {
	out := make(map[Operation]*gojsonschema.Schema, len(documentedShapes))
	for op, shape := range documentedShapes {
		raw, err := ReflectSchema(shape)
		if err != nil {
			return nil, fmt.Errorf("reflect %s schema: %w", op, err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", op, err)
		}
		out[op] = s
	}
	return out, nil
}

func validateAgainst(s *gojsonschema.Schema, b []byte) error {
	result, err := s.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("completion does not match schema: %s", collect(result.Errors()))
	}
	return nil
}

func collect(errs []gojsonschema.ResultError) string {
	var buf bytes.Buffer
	for _, e := range errs {
		buf.WriteString(e.String())
		buf.WriteByte(';')
	}
	return buf.String()
}
