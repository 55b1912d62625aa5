package cleaning

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/failures"
)

// Params are the stage inputs supplied on the command line.
type Params struct {
	InputArtifact     string  `json:"input_artifact" validate:"notblank,artifact_ref"`
	OutputArtifact    string  `json:"output_artifact" validate:"notblank,artifact_name"`
	OutputType        string  `json:"output_type" validate:"notblank"`
	OutputDescription string  `json:"output_description" validate:"notblank"`
	MinPrice          float64 `json:"min_price" validate:"finite"`
	MaxPrice          float64 `json:"max_price" validate:"finite"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	validateErr  error
)

func paramsValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		validateErr = registerValidators(v)
		validate = v
	})
	return validate, validateErr
}

func registerValidators(v *validator.Validate) error {
	return errors.Join(
		v.RegisterValidation("notblank", validateNotBlank),
		v.RegisterValidation("artifact_ref", validateArtifactRef),
		v.RegisterValidation("artifact_name", validateArtifactName),
		v.RegisterValidation("finite", validateFinite),
	)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateArtifactRef(fl validator.FieldLevel) bool {
	_, err := artifacts.ParseReference(fl.Field().String())
	return err == nil
}

func validateArtifactName(fl validator.FieldLevel) bool {
	return artifacts.ValidName(fl.Field().String())
}

func validateFinite(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// Validate checks every field. An inverted price range is allowed and simply
// produces an empty output.
func (p Params) Validate() error {
	v, err := paramsValidator()
	if err != nil {
		return failures.Wrap(failures.ErrConfiguration, "cleaning", "validate params", "validator setup", err)
	}
	err = v.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return failures.Wrap(failures.ErrConfiguration, "cleaning", "validate params", "invalid parameters", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return failures.Wrap(failures.ErrConfiguration, "cleaning", "validate params", strings.Join(problems, "; "), nil)
}

func describeFieldError(fe validator.FieldError) string {
	field := "--" + fe.Field()
	switch fe.Tag() {
	case "notblank":
		return field + " must not be blank"
	case "artifact_ref":
		return fmt.Sprintf("%s %q is not a valid artifact reference (expected name, name:latest, or name:vN)", field, fe.Value())
	case "artifact_name":
		return fmt.Sprintf("%s %q is not a valid artifact name", field, fe.Value())
	case "finite":
		return field + " must be a finite number"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// ConfigValues returns the parameters in the form recorded on the run.
func (p Params) ConfigValues() map[string]any {
	return map[string]any{
		"input_artifact":     p.InputArtifact,
		"output_artifact":    p.OutputArtifact,
		"output_type":        p.OutputType,
		"output_description": p.OutputDescription,
		"min_price":          p.MinPrice,
		"max_price":          p.MaxPrice,
	}
}
