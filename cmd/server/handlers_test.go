package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mofl2328/languagetool/internal/testutil"
	"github.com/Mofl2328/languagetool/tagging/cs"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tg := cs.New(testutil.ResourceDir(t))
	t.Cleanup(func() { tg.Close() })
	srv := httptest.NewServer(withRequestLogging(newMux(tg)))
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleTagText(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/tag", "application/json",
		strings.NewReader(`{"text":"Praha je v ČR","skip_whitespace":true}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	var out tagResponse
	decode(t, resp, &out)

	if len(out.Tokens) != 4 {
		t.Fatalf("got %d tokens, want 4: %+v", len(out.Tokens), out.Tokens)
	}
	praha := out.Tokens[0]
	if praha.Token != "Praha" || len(praha.Readings) != 1 || praha.Readings[0].Tag != "NNFS1" || praha.Readings[0].Lemma != "praha" {
		t.Errorf("Praha = %+v", praha)
	}
	je := out.Tokens[1]
	if je.StartPos != 6 || len(je.Readings) != 2 {
		t.Errorf("je = %+v", je)
	}
	cr := out.Tokens[3]
	if cr.Token != "ČR" || cr.StartPos != 11 || len(cr.Readings) != 1 {
		t.Fatalf("ČR = %+v", cr)
	}
	if r := cr.Readings[0]; r.Tag != "" || r.StartPos == nil || *r.StartPos != 11 {
		t.Errorf("ČR reading = %+v", r)
	}
}

func TestHandleTagTokens(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/tag", "application/json",
		strings.NewReader(`{"tokens":["knihu"]}`))
	if err != nil {
		t.Fatal(err)
	}
	var out tagResponse
	decode(t, resp, &out)
	if len(out.Tokens) != 1 || len(out.Tokens[0].Readings) != 2 {
		t.Fatalf("tokens = %+v", out.Tokens)
	}
	if out.Tokens[0].Readings[0].Tag != "NNFS1" || out.Tokens[0].Readings[1].Tag != "NNFS4" {
		t.Errorf("readings = %+v", out.Tokens[0].Readings)
	}
}

func TestHandleTagBadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"not json", http.MethodPost, "tokens", http.StatusBadRequest},
		{"empty", http.MethodPost, `{}`, http.StatusBadRequest},
		{"both fields", http.MethodPost, `{"tokens":["a"],"text":"a"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+"/api/tag", strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			var out errorResponse
			decode(t, resp, &out)
			if resp.StatusCode != tt.want || out.Error == "" {
				t.Errorf("status = %d, error = %q", resp.StatusCode, out.Error)
			}
		})
	}
}

func TestHandleLookup(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/lookup?word=M%C3%ADr")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out lookupResponse
	decode(t, resp, &out)
	if len(out.Entries) != 1 || out.Entries[0].Lemma != "Mír" {
		t.Errorf("entries = %+v", out.Entries)
	}
	if len(out.Lowercase) != 1 || len(out.Lowercase[0].Tags) != 2 {
		t.Errorf("lowercase = %+v", out.Lowercase)
	}
}

func TestHandleLookupMisses(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/lookup?word=qwerty")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/lookup")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var out statusResponse
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusOK || out.Status != "ok" {
		t.Errorf("status = %d, body = %+v", resp.StatusCode, out)
	}

	missing := httptest.NewServer(newMux(cs.New(t.TempDir())))
	defer missing.Close()
	resp, err = http.Get(missing.URL + "/api/healthz")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusServiceUnavailable || out.Error == "" {
		t.Errorf("status = %d, body = %+v", resp.StatusCode, out)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.cz, ,https://b.cz ")
	if len(got) != 2 || got[0] != "https://a.cz" || got[1] != "https://b.cz" {
		t.Errorf("splitOrigins = %q", got)
	}
}
