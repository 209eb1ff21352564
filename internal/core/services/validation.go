package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// sampleValidate checks the same binding tags gin enforces on HTTP requests,
// so samples from the CLI and MCP are held to the same contract.
var sampleValidate = newSampleValidator()

func newSampleValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateSample reports the first tag violation, then the finiteness checks
// the tags cannot express. Errors wrap domain.ErrInvalidInput.
func validateSample(s *domain.Sample) error {
	if err := sampleValidate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, fe.Field())
		case "gte":
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, fe.Field())
		default:
			return fmt.Errorf("%w: %s is invalid", domain.ErrInvalidInput, fe.Field())
		}
	}
	return s.Validate()
}
