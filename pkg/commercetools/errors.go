package commercetools

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Error codes produced by the client itself rather than the API.
const (
	// ErrorCodeNoToken is reported when the auth gate could not obtain an
	// access token and the request was never sent.
	ErrorCodeNoToken = "no_token"
)

// ErrorMessage is one entry of the error envelope returned for non-2xx
// responses.
type ErrorMessage struct {
	Code    string `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e ErrorMessage) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// parseErrorEnvelope extracts the structured error list from a non-2xx body
// of the shape {"errors":[{"code":...,"message":...},...]}. A missing or
// malformed envelope yields an empty list, not a failure. Elements without
// any field are skipped.
func parseErrorEnvelope(body []byte) []ErrorMessage {
	errs := gjson.GetBytes(body, "errors")
	if !errs.IsArray() {
		return nil
	}

	var messages []ErrorMessage

	errs.ForEach(func(_, element gjson.Result) bool {
		if !element.IsObject() || len(element.Map()) == 0 {
			return true
		}

		messages = append(messages, ErrorMessage{
			Code:    element.Get("code").String(),
			Message: element.Get("message").String(),
		})

		return true
	})

	return messages
}
