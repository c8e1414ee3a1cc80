package util

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// EncodeField makes a textual field safe for the positional wire format.
// This is a transport concern, not a security control.
func EncodeField(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

func DecodeField(value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// PositiveInt coerces the loosely typed payloads the remote returns
// (json numbers, numeric strings) into a positive integer identifier.
func PositiveInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 && v == float64(int64(v)) {
			return int64(v), true
		}
	case json.Number:
		id, err := v.Int64()
		if err == nil && id > 0 {
			return id, true
		}
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}
