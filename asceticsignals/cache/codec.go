package cache

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// decimal admits plain decimal notation only, so "inf", "NaN" and "0x10"
// stay strings.
var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func encode(value any) (Entry, error) {
	switch v := value.(type) {
	case nil:
		return Entry{}, errors.WithMessage(ErrUnsupportedValue, "nil")
	case string:
		return text(v), nil
	case bool:
		return text(strconv.FormatBool(v)), nil
	case int:
		return text(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return text(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return text(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return text(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return text(strconv.FormatInt(v, 10)), nil
	case uint:
		return text(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return text(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return text(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return text(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return text(strconv.FormatUint(v, 10)), nil
	case float32:
		return text(strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case float64:
		return text(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case []byte:
		return Entry{ContentType: ContentTypeBinary, Body: v}, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return text(rv.String()), nil
	case reflect.Bool:
		return text(strconv.FormatBool(rv.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return text(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return text(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return text(strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		body, err := json.Marshal(value)
		if err != nil {
			return Entry{}, errors.Wrap(err, "cache: unable to encode value as json")
		}
		return Entry{ContentType: ContentTypeJSON, Body: body}, nil
	default:
		return Entry{}, errors.WithMessagef(ErrUnsupportedValue, "%T", value)
	}
}

func text(s string) Entry {
	return Entry{ContentType: ContentTypeText, Body: []byte(s)}
}

// decode rebuilds a value: JSON becomes any, text becomes float64, bool or
// string in that order of preference, anything else is returned as bytes.
func decode(entry Entry) (any, error) {
	switch {
	case entry.ContentType == ContentTypeJSON:
		var v any
		if err := json.Unmarshal(entry.Body, &v); err != nil {
			return nil, errors.Wrap(err, "cache: unable to decode json entry")
		}
		return v, nil
	case strings.HasPrefix(entry.ContentType, "text/"):
		s := string(entry.Body)
		if decimal.MatchString(s) {
			if num, err := strconv.ParseFloat(s, 64); err == nil {
				return num, nil
			}
		}
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return s, nil
	default:
		return entry.Body, nil
	}
}
