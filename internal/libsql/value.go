package libsql

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

// Hrana value type tags.
const (
	typeNull    = "null"
	typeInteger = "integer"
	typeFloat   = "float"
	typeText    = "text"
	typeBlob    = "blob"
)

// Value is the wire envelope for a statement argument.
type Value struct {
	Type   string  `json:"type"`
	Value  *string `json:"value,omitempty"`
	Base64 *string `json:"base64,omitempty"`
}

func tagged(typ, s string) Value {
	return Value{Type: typ, Value: &s}
}

// EncodeArgs tags every parameter with its inferred wire type. The result is
// never nil so it always serializes as a JSON array.
func EncodeArgs(params []any) []Value {
	out := make([]Value, 0, len(params))
	for _, p := range params {
		out = append(out, EncodeValue(p))
	}
	return out
}

// EncodeValue maps a Go value to its envelope: nil → null, integer kinds →
// integer, float kinds → float, []byte → blob, everything else → text.
func EncodeValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{Type: typeNull}
	case []byte:
		s := base64.StdEncoding.EncodeToString(x)
		return Value{Type: typeBlob, Base64: &s}
	case time.Time:
		return tagged(typeText, dbx.FormatTime(x))
	case string:
		return tagged(typeText, x)
	case fmt.Stringer:
		return tagged(typeText, x.String())
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Value{Type: typeNull}
		}
		rv = rv.Elem()
		if rv.CanInterface() {
			if _, ok := rv.Interface().(time.Time); ok {
				return EncodeValue(rv.Interface())
			}
		}
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return tagged(typeInteger, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return tagged(typeInteger, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		return tagged(typeFloat, strconv.FormatFloat(rv.Float(), 'g', -1, 32))
	case reflect.Float64:
		return tagged(typeFloat, strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.String:
		return tagged(typeText, rv.String())
	case reflect.Bool:
		return tagged(typeText, strconv.FormatBool(rv.Bool()))
	default:
		return tagged(typeText, fmt.Sprint(v))
	}
}

// unwrapValue turns a decoded cell into a plain Go value. Envelopes are
// unwrapped by their type tag; bare JSON scalars are passed through with
// numbers narrowed to int64 when integral.
func unwrapValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		typ, ok := x["type"].(string)
		if !ok {
			return x
		}
		return unwrapEnvelope(typ, x)
	case json.Number:
		return numberValue(x)
	default:
		return x
	}
}

func unwrapEnvelope(typ string, env map[string]any) any {
	if typ == typeNull {
		return nil
	}
	raw, hasValue := env["value"]

	switch typ {
	case typeInteger:
		if n, ok := asInt(raw); ok {
			return n
		}
	case typeFloat:
		if f, ok := asFloat(raw); ok {
			return f
		}
	case typeText:
		if s, ok := raw.(string); ok {
			return s
		}
	case typeBlob:
		enc, _ := env["base64"].(string)
		if enc == "" {
			enc, _ = raw.(string)
		}
		if b, err := decodeBase64(enc); err == nil {
			return b
		}
	}

	if !hasValue {
		return nil
	}
	return unwrapValue(raw)
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// decodeBase64 accepts padded and unpadded standard encodings.
func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
