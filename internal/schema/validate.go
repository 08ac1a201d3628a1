package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"linkedin-job-tracker/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Violation is one failed schema rule.
type Violation struct {
	Field string
	Tag   string
	Value any
}

type Validator struct {
	validate *validator.Validate
	logger   *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON keys rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// List fields are either absent or carry at least one item.
	if err := v.RegisterValidation("nilornonempty", nilOrNonEmpty, true); err != nil {
		panic(fmt.Sprintf("register nilornonempty validation: %v", err))
	}

	return &Validator{validate: v, logger: logger}
}

func nilOrNonEmpty(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Slice {
		return true
	}
	return f.IsNil() || f.Len() > 0
}

// Validate reports whether job conforms to the schema, logging each violation.
// It never fails.
func (v *Validator) Validate(job *models.Job) bool {
	var jobID string
	if job != nil {
		jobID = job.ID()
	}

	violations := v.ValidateErrors(job)
	for _, viol := range violations {
		v.logger.Warn("job record failed validation",
			zap.String("job_id", jobID),
			zap.String("field", viol.Field),
			zap.String("rule", viol.Tag),
			zap.Any("value", viol.Value),
		)
	}
	return len(violations) == 0
}

// ValidateErrors returns the violations for job, or nil when it is valid.
func (v *Validator) ValidateErrors(job *models.Job) []Violation {
	if job == nil {
		return []Violation{{Field: "job", Tag: "required"}}
	}

	err := v.validate.Struct(job)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Violation{{Field: "job", Tag: err.Error()}}
	}

	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Violation{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}
	return out
}
