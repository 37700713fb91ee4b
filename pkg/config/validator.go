package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists every schema violation of a document
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "configuration file is not valid:\n  - " + strings.Join(e.Problems, "\n  - ")
}

// Validate validates a configuration file against the JSON schema and the
// semantic rules of Config.Validate
func Validate(configFile string) error {
	_, err := ParseConfig(configFile)
	return err
}

// validateDocument checks a JSON document against Schema
func validateDocument(document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(Schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return &ValidationError{Problems: problems}
	}

	return nil
}

// IsValidationError reports whether err carries schema violations
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
