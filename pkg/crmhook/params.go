package crmhook

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// EncodeParams flattens a parameter mapping into form values using the
// portal's bracket convention: nested mappings become key[sub], sequences
// become key[0], key[1], and so on. Scalar leaves are stringified. Values
// the encoding cannot represent fail with an EncodingError naming the
// parameter path.
func EncodeParams(params Fields) (url.Values, error) {
	values := url.Values{}

	for key, value := range params {
		err := encodeValue(values, key, value)
		if err != nil {
			return nil, err
		}
	}

	return values, nil
}

func encodeValue(values url.Values, key string, value interface{}) error {
	switch v := value.(type) {
	case nil:
		values.Set(key, "")

		return nil
	case Fields:
		return encodeMap(values, key, v)
	case map[string]interface{}:
		return encodeMap(values, key, v)
	case map[string]string:
		for sub, item := range v {
			values.Set(key+"["+sub+"]", item)
		}

		return nil
	case []interface{}:
		for i, item := range v {
			err := encodeValue(values, key+"["+strconv.Itoa(i)+"]", item)
			if err != nil {
				return err
			}
		}

		return nil
	case []string:
		for i, item := range v {
			values.Set(key+"["+strconv.Itoa(i)+"]", item)
		}

		return nil
	case []int:
		for i, item := range v {
			values.Set(key+"["+strconv.Itoa(i)+"]", strconv.Itoa(item))
		}

		return nil
	case []int64:
		for i, item := range v {
			values.Set(key+"["+strconv.Itoa(i)+"]", strconv.FormatInt(item, 10))
		}

		return nil
	default:
		return encodeScalar(values, key, value)
	}
}

func encodeMap(values url.Values, key string, fields map[string]interface{}) error {
	for sub, item := range fields {
		err := encodeValue(values, key+"["+sub+"]", item)
		if err != nil {
			return err
		}
	}

	return nil
}

func encodeScalar(values url.Values, key string, value interface{}) error {
	switch v := value.(type) {
	case string:
		values.Set(key, v)
	case bool:
		if v {
			values.Set(key, "1")
		} else {
			values.Set(key, "0")
		}
	case int:
		values.Set(key, strconv.Itoa(v))
	case int64:
		values.Set(key, strconv.FormatInt(v, 10))
	case int32:
		values.Set(key, strconv.FormatInt(int64(v), 10))
	case uint, uint32, uint64:
		values.Set(key, fmt.Sprintf("%d", v))
	case float64:
		values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		values.Set(key, strconv.FormatFloat(float64(v), 'f', -1, 32))
	case time.Time:
		values.Set(key, v.Format(time.RFC3339))
	case fmt.Stringer:
		values.Set(key, v.String())
	default:
		return &EncodingError{Key: key, Value: fmt.Sprintf("unsupported type %s", reflect.TypeOf(value))}
	}

	return nil
}
