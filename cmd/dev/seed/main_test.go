package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultAPIURL(t *testing.T) {
	cases := map[string]string{
		"":               "http://localhost:8081",
		":9000":          "http://localhost:9000",
		"0.0.0.0:8081":   "http://localhost:8081",
		"127.0.0.1:8081": "http://127.0.0.1:8081",
	}
	for in, want := range cases {
		if got := defaultAPIURL(in); got != want {
			t.Fatalf("defaultAPIURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPostRoom(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rooms" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	if err := postRoom(srv.Client(), srv.URL+"/", map[string]any{"number": "101"}); err != nil {
		t.Fatalf("postRoom: %v", err)
	}
	if got["number"] != "101" {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestPostRoom_NonCreatedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	if err := postRoom(srv.Client(), srv.URL, map[string]any{}); err == nil {
		t.Fatalf("expected error for 409")
	}
}
