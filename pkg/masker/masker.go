package masker

import (
	"errors"
	"reflect"

	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
)

var ErrConfigNotPointer = errors.New("config must be a pointer to struct")

// LogConfigs 설정 구조체를 한 줄씩 로그로 남긴다.
// `masked:"true"` 태그가 붙은 문자열 필드는 가려진다
func LogConfigs(configs ...interface{}) error {
	for _, cfg := range configs {
		masked, name, err := Mask(cfg)
		if err != nil {
			return err
		}
		logger.Info("Config", map[string]interface{}{name: masked})
	}
	return nil
}

// Mask 구조체를 map 으로 바꾸면서 민감한 필드를 가린다
func Mask(cfg interface{}) (map[string]interface{}, string, error) {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, "", ErrConfigNotPointer
	}
	v = v.Elem()
	return maskStructFields(v, v.Type()), v.Type().Name(), nil
}

func maskStructFields(v reflect.Value, t reflect.Type) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		field := v.Field(i)
		masked := fieldType.Tag.Get("masked") == "true"

		switch field.Kind() {
		case reflect.Struct:
			result[fieldType.Name] = maskStructFields(field, field.Type())
		case reflect.String:
			if masked {
				result[fieldType.Name] = maskSensitiveData(field.String())
			} else {
				result[fieldType.Name] = field.String()
			}
		default:
			result[fieldType.Name] = field.Interface()
		}
	}
	return result
}

// maskSensitiveData 첫 글자와 마지막 글자만 남긴다. 빈 값은 그대로 둬서 미설정 여부가 보이게 한다
func maskSensitiveData(data string) string {
	if data == "" {
		return ""
	}
	runes := []rune(data)
	if len(runes) <= 2 {
		return "****"
	}
	return string(runes[0]) + "****" + string(runes[len(runes)-1])
}
