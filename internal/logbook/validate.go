package logbook

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their wire names so local and server errors share keys.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// updateDraft mirrors domain.Draft without the password requirement.
type updateDraft struct {
	Fullname string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

// validateDraft checks that required fields are non-empty. Updates may leave
// the password blank.
func validateDraft(d domain.Draft, update bool) domain.ValidationErrors {
	var err error
	if update {
		err = validate.Struct(updateDraft{Fullname: d.Fullname, Email: d.Email})
	} else {
		err = validate.Struct(d)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationErrors{"_": {err.Error()}}
	}

	out := domain.ValidationErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], formatFieldError(fe))
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}
