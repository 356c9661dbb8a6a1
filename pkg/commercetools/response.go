package commercetools

import (
	"encoding/json"
	"reflect"

	"github.com/tidwall/gjson"
)

// Response is the outcome of one API call. Every classifiable failure is
// captured here instead of being returned as an error:
//
//   - Success false with a non-empty Errors list: the request was rejected
//     by the API (or, for the single ErrorCodeNoToken entry, never sent).
//   - Success true with a nil Result: the body could not be mapped onto T.
//     Callers must treat this as an error condition.
//
// Only transport-level failures escape as hard errors from the call itself.
type Response[T any] struct {
	Success      bool
	StatusCode   int
	ReasonPhrase string
	Result       *T
	Errors       []ErrorMessage
}

// FirstError returns the first error or nil.
func (r *Response[T]) FirstError() *ErrorMessage {
	if len(r.Errors) > 0 {
		return &r.Errors[0]
	}

	return nil
}

var rawMessageType = reflect.TypeOf((*json.RawMessage)(nil)).Elem()

// isRawContainer reports whether t represents undifferentiated JSON (an
// opaque object/array or a generic sequence) that is unmarshaled directly
// instead of going through the activator registry.
func isRawContainer(t reflect.Type) bool {
	if t == rawMessageType {
		return true
	}

	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// decodeResponse turns a raw HTTP result into a typed Response. Statuses in
// [200,300) are successes; anything else carries the parsed error envelope.
func decodeResponse[T any](registry *Registry, statusCode int, reasonPhrase string, body []byte) *Response[T] {
	resp := &Response[T]{
		StatusCode:   statusCode,
		ReasonPhrase: reasonPhrase,
	}

	if statusCode < 200 || statusCode >= 300 {
		resp.Errors = parseErrorEnvelope(body)

		return resp
	}

	resp.Success = true

	if isRawContainer(reflect.TypeOf((*T)(nil)).Elem()) {
		var result T

		err := json.Unmarshal(body, &result)
		if err == nil {
			resp.Result = &result
		}

		return resp
	}

	if !gjson.ValidBytes(body) {
		return resp
	}

	result, ok := CreateInstance[T](registry, gjson.ParseBytes(body))
	if ok {
		resp.Result = result
	}

	return resp
}
