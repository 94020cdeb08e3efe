// Package envelope implements the outer wire format exchanged with the
// frontend bridge.
//
// A call is a JSON array whose first element is the command name and whose
// optional second element is the named parameter object:
//
//	["greet", {"name": "World"}]
//	["ping"]
//
// A response is a status/body object:
//
//	{"status":"Success","body":"10"}
//	{"status":"Error","body":"{\"message\":\"...\"}"}
//
// The parameter payload is never interpreted here; it is carried as a raw
// slice for type-directed decoding downstream.
package envelope

import (
	"errors"
	"fmt"

	"github.com/rthomasv3/Galdr/jsontext"
)

// Response status values.
const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

// ErrMalformed reports a wire payload that is not a well-formed call array
// with a leading command name string.
var ErrMalformed = errors.New("envelope: malformed call")

// Request is a decoded inbound call. Params holds the raw parameter object
// text, or nil when the call carried no parameters.
type Request struct {
	Command string
	Params  []byte
}

// Response is the outbound result of one call. Body holds the JSON text of
// the result, the serialized error description, or the empty string for a
// void result.
type Response struct {
	Status string
	Body   string
}

// DecodeRequest parses the wire call array. The second element, when
// present, must be a JSON object.
func DecodeRequest(data []byte) (*Request, error) {
	elems, err := jsontext.SplitArray(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(elems) == 0 || len(elems) > 2 {
		return nil, fmt.Errorf("%w: expected [command, params?], got %d elements", ErrMalformed, len(elems))
	}
	command, err := jsontext.Unquote(elems[0])
	if err != nil {
		return nil, fmt.Errorf("%w: command name is not a string", ErrMalformed)
	}
	if command == "" {
		return nil, fmt.Errorf("%w: empty command name", ErrMalformed)
	}
	req := &Request{Command: command}
	if len(elems) == 2 {
		params := jsontext.Trim(elems[1])
		if len(params) == 0 || params[0] != '{' {
			return nil, fmt.Errorf("%w: params must be an object", ErrMalformed)
		}
		req.Params = params
	}
	return req, nil
}

// EncodeRequest builds the wire call array. A nil params slice produces the
// single-element form.
func EncodeRequest(command string, params []byte) []byte {
	w := jsontext.NewWriter()
	w.BeginArray()
	w.WriteString(command)
	if params != nil {
		w.Raw(params)
	}
	w.EndArray()
	return w.Bytes()
}

// EncodeResponse serializes a response envelope.
func EncodeResponse(resp *Response) []byte {
	w := jsontext.NewWriter()
	w.BeginObject()
	w.Name("status")
	w.WriteString(resp.Status)
	w.Name("body")
	w.WriteString(resp.Body)
	w.EndObject()
	return w.Bytes()
}

// DecodeResponse parses a response envelope. Used by the bridge client and
// by tests; the dispatcher itself only encodes.
func DecodeResponse(data []byte) (*Response, error) {
	fields, err := jsontext.SplitObject(data)
	if err != nil {
		return nil, fmt.Errorf("envelope: malformed response: %w", err)
	}
	resp := &Response{}
	seen := 0
	for _, f := range fields {
		switch f.Name {
		case "status":
			if resp.Status, err = jsontext.Unquote(f.Raw); err != nil {
				return nil, fmt.Errorf("envelope: bad status: %w", err)
			}
			seen++
		case "body":
			if resp.Body, err = jsontext.Unquote(f.Raw); err != nil {
				return nil, fmt.Errorf("envelope: bad body: %w", err)
			}
			seen++
		}
	}
	if seen < 2 {
		return nil, errors.New("envelope: response missing status or body")
	}
	return resp, nil
}

// EncodeErrorBody serializes an error description for an Error response
// body.
func EncodeErrorBody(command string, err error) string {
	w := jsontext.NewWriter()
	w.BeginObject()
	if command != "" {
		w.Name("command")
		w.WriteString(command)
	}
	w.Name("message")
	w.WriteString(err.Error())
	w.EndObject()
	return w.String()
}
