// httpclient/url.go
package httpclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// QueryTimeLayout is how time.Time query values are written: UTC, millisecond precision.
const QueryTimeLayout = "2006-01-02T15:04:05.000Z"

// Query holds request query parameters. Values may be strings, numbers, booleans,
// time.Time or pointers to any of those; nil values are left out of the URL.
type Query map[string]any

// JoinURL joins base and path with exactly one "/" between them. An empty base returns
// path unchanged so same-origin deployments can use server-relative paths.
func JoinURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// BuildQueryString renders q as "?k=v&..." with keys in sorted order, or "" when no
// parameter has a value.
func BuildQueryString(q Query) string {
	values := url.Values{}
	for key, raw := range q {
		if s, ok := formatQueryValue(raw); ok {
			values.Set(key, s)
		}
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// formatQueryValue stringifies a single query value. The bool result is false for nil
// and for nil pointers.
func formatQueryValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		// String methods with pointer receivers are lost once dereferenced.
		if s, ok := rv.Interface().(fmt.Stringer); ok && rv.Kind() == reflect.Pointer {
			if _, elemOK := rv.Elem().Interface().(fmt.Stringer); !elemOK {
				return s.String(), true
			}
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(QueryTimeLayout), true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return fmt.Sprint(v), true
}
