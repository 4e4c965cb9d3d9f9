package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so errors line up with request bodies.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// errorMessages is a nested map of languages to validation tags to custom error messages.
var errorMessages = map[string]map[string]string{
	"en": {
		"required":  "The field '%s' is required.",
		"email":     "The field '%s' must be a valid email address.",
		"min":       "The field '%s' must be at least %s characters long.",
		"max":       "The field '%s' must be no longer than %s characters.",
		"oneof":     "The field '%s' must be one of %s.",
		"datetime":  "The field '%s' must match the layout %s.",
		"tasktype":  "The field '%s' must be a known task type.",
		"localtime": "The field '%s' must be a date and time such as 2024-01-20T10:00.",
	},
	"zh": {
		"required":  "字段 '%s' 为必填项。",
		"email":     "字段 '%s' 必须是有效的电子邮箱地址。",
		"min":       "字段 '%s' 的长度不能少于 %s 个字符。",
		"max":       "字段 '%s' 的长度不能超过 %s 个字符。",
		"oneof":     "字段 '%s' 的值必须是 %s 之一。",
		"datetime":  "字段 '%s' 必须符合格式 %s。",
		"tasktype":  "字段 '%s' 必须是已知的任务类型。",
		"localtime": "字段 '%s' 必须是日期时间，例如 2024-01-20T10:00。",
	},
}

// parseMessage constructs a friendly error message based on the validation tag and custom messages.
func parseMessage(field string, e validator.FieldError, lang ...string) string {
	msgLang := "en"
	if len(lang) > 0 && lang[0] != "" {
		msgLang = lang[0]
	}
	if msgs, exists := errorMessages[msgLang]; exists {
		if msg, exists := msgs[e.Tag()]; exists {
			switch strings.Count(msg, "%s") {
			case 1:
				return fmt.Sprintf(msg, field)
			case 2:
				return fmt.Sprintf(msg, field, e.Param())
			}
		}
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
}

// RegisterValidation adds a string-valued validation tag.
// It must be called before any validation runs, typically from init.
func RegisterValidation(tag string, fn func(string) bool) error {
	return validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

// ValidateStruct validates a struct and returns a map of JSON field names to
// friendly error messages. An empty map means the struct is valid.
func ValidateStruct(s any, lang ...string) map[string]string {
	validationErrors := make(map[string]string)

	err := validate.Struct(s)
	if err == nil {
		return validationErrors
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors[e.Field()] = parseMessage(e.Field(), e, lang...)
		}
		return validationErrors
	}

	validationErrors["_"] = err.Error()
	return validationErrors
}
