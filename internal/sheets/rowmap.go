package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Row 시트 한 행. 키는 snake_case 헤더
type Row map[string]string

// Record API/모델 쪽 표현. 키는 camelCase
type Record map[string]string

// Get 없는 컬럼은 빈 문자열
func (r Row) Get(column string) string {
	return r[column]
}

func (r Record) Get(field string) string {
	return r[field]
}

// Values 헤더 순서대로 셀 값을 늘어놓는다
func (r Row) Values(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = r[h]
	}
	return out
}

// RowFromValues 헤더와 셀 값으로 Row 를 만든다. 값이 모자라면 빈 문자열
func RowFromValues(headers []string, values []interface{}) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(values) && values[i] != nil {
			row[h] = fmt.Sprint(values[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

// SnakeToCamel partner_member_id -> partnerMemberId
func SnakeToCamel(s string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range s {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext && unicode.IsLower(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		upperNext = false
	}
	return b.String()
}

// CamelToSnake partnerMemberId -> partner_member_id
func CamelToSnake(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteRune('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel 시트 행을 레코드로. 값은 건드리지 않는다
func ToCamel(row Row) Record {
	rec := make(Record, len(row))
	for k, v := range row {
		rec[SnakeToCamel(k)] = v
	}
	return rec
}

// ToSnake 레코드를 시트 행으로
func ToSnake(rec Record) Row {
	row := make(Row, len(rec))
	for k, v := range rec {
		row[CamelToSnake(k)] = v
	}
	return row
}

// RecordFromStruct json 태그(camelCase) 기준으로 모델을 문자열 레코드로 펼친다.
// null 은 빈 문자열, 시간은 JSON 그대로(RFC3339), 중첩 값은 JSON 문자열
func RecordFromStruct(v interface{}) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}

	rec := make(Record, len(fields))
	for k, val := range fields {
		rec[k] = stringify(val)
	}
	return rec, nil
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		nested, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(nested)
	}
}
