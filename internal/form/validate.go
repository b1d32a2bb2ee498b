package form

import (
	"errors"
	"net/mail"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"recycleadmin/internal/schedule"
)

var (
	validate = newValidator()

	phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 错误中使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("wastetype", func(fl validator.FieldLevel) bool {
		return schedule.IsWasteType(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if phonePattern.MatchString(strings.ReplaceAll(s, " ", "")) {
			return true
		}
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	})
	return v
}

func wasteTypeChoices() []string {
	return schedule.WasteTypes
}

// check 运行 validator，并把结果合并到 errs
func check(errs FieldErrors, v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			errs.add(e.Field(), describe(e))
		}
	}
	return errs.err()
}
