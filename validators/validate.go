// Package validators holds the request checks shared by the route validators.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.Split(f.Tag.Get(tag), ",")[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Struct checks v against its validate tags and returns field -> message.
// An empty map means v is valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(v)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["request"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "email":
		return "Invalid email!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Pagination is the page/limit query pair. Missing values default to 1 and 10.
type Pagination struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Normalize fills the defaults.
func (p *Pagination) Normalize() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
}
