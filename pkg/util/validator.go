package util

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,49}$`)
)

// RegisterValidators gin 바인딩 검증기에 커스텀 태그를 붙인다.
// bizno: 사업자등록번호 10자리, krphone: 휴대폰/지역번호, slug: 전용 URL
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	// 에러 응답에 json 필드명이 나가도록
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("bizno", validateBusinessNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("krphone", validatePhone); err != nil {
		return err
	}
	return v.RegisterValidation("slug", validateSlug)
}

func validateBusinessNumber(fl validator.FieldLevel) bool {
	return len(DigitsOnly(fl.Field().String())) == 10
}

func validatePhone(fl validator.FieldLevel) bool {
	digits := DigitsOnly(fl.Field().String())
	if len(digits) < 9 || len(digits) > 11 {
		return false
	}
	return strings.HasPrefix(digits, "0")
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// ValidationFields 검증 에러를 json 필드명 -> 한글 메시지로 바꾼다
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		name := e.Field()
		if name != "" {
			name = strings.ToLower(name[:1]) + name[1:]
		}
		fields[name] = validationMessage(e)
	}
	return fields
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "필수 항목입니다"
	case "email":
		return "이메일 형식이 올바르지 않습니다"
	case "bizno":
		return "사업자등록번호는 10자리 숫자입니다"
	case "krphone":
		return "연락처 형식이 올바르지 않습니다"
	case "slug":
		return "영문 소문자, 숫자, 하이픈만 사용할 수 있습니다 (2~50자)"
	case "hexcolor":
		return "색상 코드 형식이 올바르지 않습니다 (#1e3a5f)"
	case "oneof":
		return "허용되지 않는 값입니다: " + e.Param()
	case "min":
		return "최소 " + e.Param() + "자 이상이어야 합니다"
	case "max":
		return "최대 " + e.Param() + "자까지 입력할 수 있습니다"
	}
	return "형식이 올바르지 않습니다"
}
