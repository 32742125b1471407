package decoder

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"xapi-connector/src/helpers"
)

const tagName = "xapi"

var timeType = reflect.TypeOf(time.Time{})

// fieldError is the internal failure; it becomes a helpers.DecodeError once
// the record name is known.
type fieldError struct {
	path   string
	reason string
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// DecodeOne fills the struct pointed to by out from a single payload.
//
// An object payload is matched field by field against the xapi tags; unknown
// keys are ignored. A scalar payload goes into the field tagged passthrough.
func DecodeOne(p Payload, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decoder: DecodeOne needs a non-nil pointer to a struct, got %T", out)
	}
	target := rv.Elem()
	record := target.Type().Name()

	// Decode into a scratch value so a failure leaves out untouched.
	scratch := reflect.New(target.Type()).Elem()
	if fe := decodeInto(p, scratch, ""); fe != nil {
		return helpers.NewDecodeError(record, fe.path, fe.reason)
	}
	target.Set(scratch)
	return nil
}

// -----------------------------------------------------------------------------

// DecodeMany fills the slice pointed to by out from a list payload, keeping
// order and length. Any failing element fails the whole call and out is left
// untouched. A none payload yields an empty slice.
func DecodeMany(p Payload, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("decoder: DecodeMany needs a non-nil pointer to a slice, got %T", out)
	}
	target := rv.Elem()
	elemType := target.Type().Elem()
	record := recordName(elemType)

	switch p.Kind {
	case KindNone:
		target.Set(reflect.MakeSlice(target.Type(), 0, 0))
		return nil
	case KindList:
	default:
		return helpers.NewDecodeError(record, "", fmt.Sprintf("expected a list, got %s", p.Kind))
	}

	result := reflect.MakeSlice(target.Type(), len(p.List), len(p.List))
	for i, item := range p.List {
		path := "[" + strconv.Itoa(i) + "]"
		if fe := decodeInto(FromValue(item), result.Index(i), path); fe != nil {
			return helpers.NewDecodeError(record, fe.path, fe.reason)
		}
	}
	target.Set(result)
	return nil
}

// -----------------------------------------------------------------------------

// One decodes a single record of type T.
func One[T any](p Payload) (T, error) {
	var out T
	err := DecodeOne(p, &out)
	return out, err
}

// -----------------------------------------------------------------------------

// Many decodes a list of records of type T.
func Many[T any](p Payload) ([]T, error) {
	var out []T
	err := DecodeMany(p, &out)
	return out, err
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func recordName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// -----------------------------------------------------------------------------

type fieldSpec struct {
	index       int
	wire        string
	optional    bool
	passthrough bool
}

func fieldsOf(t reflect.Type) []fieldSpec {
	specs := make([]fieldSpec, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(tagName)
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		parts := strings.Split(tag, ",")
		spec := fieldSpec{index: i, wire: parts[0]}
		if spec.wire == "" {
			spec.wire = f.Name
		}
		for _, opt := range parts[1:] {
			switch strings.TrimSpace(opt) {
			case "optional":
				spec.optional = true
			case "passthrough":
				spec.passthrough = true
			}
		}
		if f.Type.Kind() == reflect.Pointer {
			spec.optional = true
		}
		specs = append(specs, spec)
	}
	return specs
}

// -----------------------------------------------------------------------------

// decodeInto decodes a record (struct, or pointer to struct) from p.
func decodeInto(p Payload, v reflect.Value, path string) *fieldError {
	if v.Kind() == reflect.Pointer {
		if p.Kind == KindNone {
			return nil
		}
		elem := reflect.New(v.Type().Elem())
		if fe := decodeInto(p, elem.Elem(), path); fe != nil {
			return fe
		}
		v.Set(elem)
		return nil
	}
	if v.Kind() != reflect.Struct || v.Type() == timeType {
		return convert(p.value(), v, path)
	}

	switch p.Kind {
	case KindObject:
		return decodeStruct(p.Object, v, path)
	case KindScalar:
		return decodePassthrough(p.Scalar, v, path)
	case KindNone:
		return &fieldError{path: path, reason: "empty payload"}
	default:
		return &fieldError{path: path, reason: fmt.Sprintf("expected an object, got %s", p.Kind)}
	}
}

// -----------------------------------------------------------------------------

func (p Payload) value() any {
	switch p.Kind {
	case KindScalar:
		return p.Scalar
	case KindObject:
		return p.Object
	case KindList:
		return p.List
	}
	return nil
}

// -----------------------------------------------------------------------------

func decodeStruct(obj map[string]any, v reflect.Value, path string) *fieldError {
	for _, spec := range fieldsOf(v.Type()) {
		fieldPath := joinPath(path, spec.wire)
		raw, present := obj[spec.wire]
		if !present {
			if spec.optional {
				continue
			}
			return &fieldError{path: fieldPath, reason: "required field is missing"}
		}
		if raw == nil {
			if spec.optional {
				continue
			}
			return &fieldError{path: fieldPath, reason: "required field is null"}
		}
		if fe := convert(raw, v.Field(spec.index), fieldPath); fe != nil {
			return fe
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func decodePassthrough(scalar any, v reflect.Value, path string) *fieldError {
	for _, spec := range fieldsOf(v.Type()) {
		if spec.passthrough {
			return convert(scalar, v.Field(spec.index), joinPath(path, spec.wire))
		}
	}
	return &fieldError{path: path, reason: "scalar payload for a record without a passthrough field"}
}

// -----------------------------------------------------------------------------

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

// -----------------------------------------------------------------------------

// convert stores raw into v according to v's declared type.
func convert(raw any, v reflect.Value, path string) *fieldError {
	if raw == nil {
		if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			return nil
		}
		return &fieldError{path: path, reason: "value is null"}
	}

	if v.Type() == timeType {
		ms, err := toInt(raw)
		if err != nil {
			return &fieldError{path: path, reason: "timestamp: " + err.Error()}
		}
		v.Set(reflect.ValueOf(time.UnixMilli(ms).UTC()))
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if fe := convert(raw, elem.Elem(), path); fe != nil {
			return fe
		}
		v.Set(elem)

	case reflect.Interface:
		v.Set(reflect.ValueOf(raw))

	case reflect.String:
		switch t := raw.(type) {
		case string:
			v.SetString(t)
		case json.Number:
			v.SetString(t.String())
		default:
			return mismatch(path, "string", raw)
		}

	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return mismatch(path, "bool", raw)
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(raw)
		if err != nil {
			return &fieldError{path: path, reason: err.Error()}
		}
		if v.OverflowInt(n) {
			return &fieldError{path: path, reason: fmt.Sprintf("%d overflows %s", n, v.Type())}
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt(raw)
		if err != nil {
			return &fieldError{path: path, reason: err.Error()}
		}
		if n < 0 || v.OverflowUint(uint64(n)) {
			return &fieldError{path: path, reason: fmt.Sprintf("%d overflows %s", n, v.Type())}
		}
		v.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		f, err := toFloat(raw)
		if err != nil {
			return &fieldError{path: path, reason: err.Error()}
		}
		if v.OverflowFloat(f) {
			return &fieldError{path: path, reason: fmt.Sprintf("%g overflows %s", f, v.Type())}
		}
		v.SetFloat(f)

	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return mismatch(path, "object", raw)
		}
		return decodeStruct(obj, v, path)

	case reflect.Slice:
		list, ok := raw.([]any)
		if !ok {
			return mismatch(path, "list", raw)
		}
		out := reflect.MakeSlice(v.Type(), len(list), len(list))
		for i, item := range list {
			if fe := convert(item, out.Index(i), path+"["+strconv.Itoa(i)+"]"); fe != nil {
				return fe
			}
		}
		v.Set(out)

	default:
		return &fieldError{path: path, reason: fmt.Sprintf("unsupported field type %s", v.Type())}
	}
	return nil
}

// -----------------------------------------------------------------------------

func mismatch(path, want string, raw any) *fieldError {
	return &fieldError{path: path, reason: fmt.Sprintf("expected %s, got %s", want, describe(raw))}
}

func describe(raw any) string {
	switch raw.(type) {
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	}
	return fmt.Sprintf("%T", raw)
}

// -----------------------------------------------------------------------------

func toInt(raw any) (int64, error) {
	switch t := raw.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", t.String())
		}
		return floatToInt(f)
	case float64:
		return floatToInt(t)
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(raw))
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expected integer, got %g", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%g overflows int64", f)
	}
	return int64(f), nil
}

func toFloat(raw any) (float64, error) {
	switch t := raw.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", t.String())
		}
		return f, nil
	case float64:
		return t, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(raw))
}
