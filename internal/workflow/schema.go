package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	nodeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("node_id", func(fl validator.FieldLevel) bool {
			return nodeIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateSchema performs load-time structural checks. It deliberately accepts an
// empty node list: reporting that is the validator's job, not the loader's.
func ValidateSchema(wf *Workflow) error {
	if wf == nil {
		return bperrors.NewValidationError("workflow", "workflow is nil", nil)
	}

	if err := validatorInstance().Struct(wf); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		if ve.Tag() == "unique" {
			msg = fmt.Sprintf("%s must have unique ids", field)
		}
		return bperrors.NewValidationError(field, msg, err)
	}

	return bperrors.NewValidationError("workflow", err.Error(), err)
}

// yamlishFieldName turns "Workflow.Nodes[1].ID" into "nodes[1].id".
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
