package domain

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the domain enum tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
			return Stage(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("ideatype", func(fl validator.FieldLevel) bool {
			return IdeaType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("effort", func(fl validator.FieldLevel) bool {
			return Effort(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// ValidatePatch checks the enum fields of a patch.
func ValidatePatch(p IdeaPatch) error {
	v := Validator()
	if p.Stage != nil {
		if err := v.Var(string(*p.Stage), "stage"); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := v.Var(string(*p.Type), "ideatype"); err != nil {
			return err
		}
	}
	if p.Effort != nil {
		if err := v.Var(string(*p.Effort), "effort"); err != nil {
			return err
		}
	}
	if p.Title != nil {
		if err := v.Var(*p.Title, "required,max=200"); err != nil {
			return err
		}
	}
	return nil
}
