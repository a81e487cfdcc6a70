package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Error is the {message} object the remote endpoint returns when ok is false.
// Transport is set when the call never produced a parseable response.
type Error struct {
	Message   string `json:"message"`
	Transport bool   `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// UnmarshalJSON accepts both {"message": "..."} and a bare string.
func (e *Error) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &e.Message)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.Message = obj.Message
	return nil
}

// Result is the uniform {ok, data|error} shape of every call.
type Result struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

var ErrUnknown = errors.New("ไม่ทราบสาเหตุข้อผิดพลาด")

// Err returns nil for a successful result and an *Error otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	if r.Error == nil || r.Error.Message == "" {
		return &Error{Message: ErrUnknown.Error()}
	}
	return r.Error
}

// Decode unmarshals Data into v. Missing or null data leaves v untouched.
func (r Result) Decode(v any) error {
	data := bytes.TrimSpace(r.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, v)
}

func failure(msg string, transport bool) Result {
	return Result{OK: false, Error: &Error{Message: msg, Transport: transport}}
}

// IsTransport reports whether err came from a failed round trip rather than
// from the remote application.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Transport
}
