package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/th"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

var thaiMessages = map[string]string{
	"required": "กรุณากรอก{0}",
	"gte":      "{0}ต้องไม่น้อยกว่า {1}",
	"lte":      "{0}ต้องไม่เกิน {1}",
	"max":      "{0}ยาวเกินไป",
	"url":      "{0}ต้องเป็นลิงก์ที่ถูกต้อง",
	"email":    "{0}ต้องเป็นอีเมลที่ถูกต้อง",
	"oneof":    "{0}ไม่ถูกต้อง",
	"min":      "{0}สั้นเกินไป",
	"datetime": "{0}ต้องอยู่ในรูปแบบ ปปปป-ดด-วว",
	"eqfield":  "{0}ไม่ตรงกัน",
}

// NewValidator returns a validator whose field names come from the `label`
// tag and whose messages are registered in Thai.
func NewValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})

	locale := th.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("th")

	for tag, msg := range thaiMessages {
		tag, msg := tag, msg
		err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, msg, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(tag, fe.Field(), fe.Param())
				if err != nil {
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return nil, nil, err
		}
	}

	return validate, trans, nil
}

// TranslateFirst turns a validation error into the first human message.
func TranslateFirst(err error, trans ut.Translator) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}
	return strings.TrimSpace(validationErrors[0].Translate(trans))
}
