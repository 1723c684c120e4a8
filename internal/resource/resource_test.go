package resource

import (
	"bytes"
	"net/http"
	"testing"
)

func TestRequest_Key(t *testing.T) {
	req := NewRequest("/bibles/web/gen.json")
	if req.Key() != "GET /bibles/web/gen.json" {
		t.Errorf("unexpected key %q", req.Key())
	}
}

func TestRequest_Modes(t *testing.T) {
	if NewRequest("/a.json").IsNavigation() {
		t.Error("expected subresource request")
	}
	if !NewNavigationRequest("/study").IsNavigation() {
		t.Error("expected navigation request")
	}
}

func TestRequest_SameOrigin(t *testing.T) {
	if !NewRequest("/app.js").SameOrigin() {
		t.Error("expected rooted path to be same-origin")
	}
	if NewRequest("https://cdn.example.com/lib.js").SameOrigin() {
		t.Error("expected absolute URL to be cross-origin")
	}
}

func TestResponse_OK(t *testing.T) {
	if !(&Response{Status: http.StatusOK}).OK() {
		t.Error("expected 200 to be OK")
	}
	if (&Response{Status: http.StatusNotModified}).OK() {
		t.Error("expected 304 to not be OK")
	}
}

func TestResponse_Clone(t *testing.T) {
	original := &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/html"}},
		Body:   []byte("body"),
		URL:    "/index.html",
	}

	cloned := original.Clone()
	cloned.Body[0] = 'X'
	cloned.Header.Set("Content-Type", "text/plain")

	if !bytes.Equal(original.Body, []byte("body")) {
		t.Error("clone shares body memory")
	}
	if original.Header.Get("Content-Type") != "text/html" {
		t.Error("clone shares header memory")
	}

	var nilRes *Response
	if nilRes.Clone() != nil {
		t.Error("expected nil clone of nil response")
	}
}
