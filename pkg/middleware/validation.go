package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/errors"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/i18n"
)

var (
	validate     *validator.Validate
	translator   *i18n.Translator
	validateOnce sync.Once
)

var shippingNumberRegex = regexp.MustCompile(`^SH\d{6}$`)

// InitValidator configures gin's validator engine once: json tag names,
// custom tags and localized messages when a translator is given.
func InitValidator(t *i18n.Translator) *validator.Validate {
	validateOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			v = validator.New()
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("shipping_number", func(fl validator.FieldLevel) bool {
			return shippingNumberRegex.MatchString(fl.Field().String())
		})

		if t != nil {
			_ = t.RegisterValidator(v)
			translator = t
		}
		validate = v
	})
	return validate
}

// formatValidationErrors maps each failed field to its message
func formatValidationErrors(lang string, err error) map[string]string {
	if translator != nil {
		return translator.TranslateValidation(lang, err)
	}

	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			fields[e.Field()] = "failed on " + e.Tag()
		}
	}
	return fields
}

// BindAndValidate binds the JSON body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return errors.ErrValidationWithFields("validation failed", formatValidationErrors(GetLanguage(c), verrs))
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}
