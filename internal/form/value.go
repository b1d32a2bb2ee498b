package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Value 表单字段的原始文本；JSON 中的字符串、数字、布尔都按文本保存
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("form value must be a scalar")
	default:
		*v = Value(data)
	}
	return nil
}

func (v Value) String() string { return strings.TrimSpace(string(v)) }

// Empty 去掉空白后为空
func (v Value) Empty() bool { return v.String() == "" }
