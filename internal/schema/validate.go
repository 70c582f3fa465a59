// Package schema decodes and validates the JSON payloads served by the
// snapshot bundle. It is the external-collaborator boundary of the load
// flows: callers receive typed data or a single descriptive error, never a
// panic and never partially validated output.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kicadcollab/snapview/internal/review"
	"github.com/kicadcollab/snapview/internal/schematic"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report issues under the JSON key names the payload actually uses.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidationError aggregates every per-field issue found in a payload.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Issues, "; "))
}

// DecodeComponents parses and validates a component list payload.
func DecodeComponents(raw []byte) ([]schematic.Component, error) {
	var components []schematic.Component
	if err := json.Unmarshal(raw, &components); err != nil {
		return nil, fmt.Errorf("schema: decode components: %w", err)
	}

	if issues := collectIssues("components", toAnySlice(components)); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return components, nil
}

// DecodeComments parses and validates a comment list payload.
func DecodeComments(raw []byte) ([]review.Comment, error) {
	var comments []review.Comment
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, fmt.Errorf("schema: decode comments: %w", err)
	}

	if issues := collectIssues("comments", toAnySlice(comments)); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return comments, nil
}

func collectIssues(label string, elements []any) []string {
	issues := make([]string, 0)
	for index, element := range elements {
		err := validate.Struct(element)
		if err == nil {
			continue
		}

		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			issues = append(issues, fmt.Sprintf("%s[%d]: %v", label, index, err))
			continue
		}
		for _, fieldError := range fieldErrors {
			issues = append(issues, fmt.Sprintf("%s[%d].%s: %s",
				label, index, fieldError.Field(), describeRule(fieldError)))
		}
	}
	return issues
}

func describeRule(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "value is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fieldError.Param())
	default:
		if fieldError.Param() != "" {
			return fmt.Sprintf("failed rule %s=%s", fieldError.Tag(), fieldError.Param())
		}
		return fmt.Sprintf("failed rule %s", fieldError.Tag())
	}
}

func toAnySlice[T any](values []T) []any {
	elements := make([]any, len(values))
	for index, value := range values {
		elements[index] = value
	}
	return elements
}
