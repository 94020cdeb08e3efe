package envelope

import (
	"errors"
	"testing"

	"github.com/rthomasv3/Galdr/jsontext"
)

func TestDecodeRequestNoParams(t *testing.T) {
	req, err := DecodeRequest([]byte(`["cmd"]`))
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if req.Command != "cmd" {
		t.Errorf("expect command 'cmd', got %q", req.Command)
	}
	if req.Params != nil {
		t.Errorf("expect nil params, got %s", req.Params)
	}
}

func TestDecodeRequestEmptyParams(t *testing.T) {
	req, err := DecodeRequest([]byte(`["cmd", {}]`))
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	fields, err := jsontext.SplitObject(req.Params)
	if err != nil || len(fields) != 0 {
		t.Fatalf("expect empty params, got %d fields (err %v)", len(fields), err)
	}
}

func TestDecodeRequestOrderedParams(t *testing.T) {
	req, err := DecodeRequest([]byte(`["cmd", {"a":1,"b":2}]`))
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	fields, err := jsontext.SplitObject(req.Params)
	if err != nil {
		t.Fatalf("SplitObject failed: %v", err)
	}
	if len(fields) != 2 || fields[0].Name != "a" || string(fields[0].Raw) != "1" ||
		fields[1].Name != "b" || string(fields[1].Raw) != "2" {
		t.Fatalf("unexpected params: %+v", fields)
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	cases := []string{
		`{"not":"array"}`,
		`[]`,
		`[42]`,
		`[42, {}]`,
		`["cmd", "not an object"]`,
		`["cmd", {}, "extra"]`,
		`not json`,
		`[""]`,
	}
	for _, in := range cases {
		if _, err := DecodeRequest([]byte(in)); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeRequest(%s): expect ErrMalformed, got %v", in, err)
		}
	}
}

func TestEncodeRequest(t *testing.T) {
	if got := string(EncodeRequest("ping", nil)); got != `["ping"]` {
		t.Errorf("expect [\"ping\"], got %s", got)
	}
	if got := string(EncodeRequest("add", []byte(`{"a":4,"b":6}`))); got != `["add",{"a":4,"b":6}]` {
		t.Errorf("unexpected request: %s", got)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	orig := &Response{Status: StatusSuccess, Body: `{"x":"va\"lue"}`}
	raw := EncodeResponse(orig)
	got, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if got.Status != orig.Status || got.Body != orig.Body {
		t.Fatalf("round trip mismatch: sent %+v, got %+v", orig, got)
	}
}

func TestEncodeResponseEmptyBody(t *testing.T) {
	raw := EncodeResponse(&Response{Status: StatusSuccess, Body: ""})
	if string(raw) != `{"status":"Success","body":""}` {
		t.Fatalf("unexpected response: %s", raw)
	}
}

func TestEncodeErrorBody(t *testing.T) {
	body := EncodeErrorBody("greet", errors.New("boom"))
	if body != `{"command":"greet","message":"boom"}` {
		t.Fatalf("unexpected error body: %s", body)
	}
}
