package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"lexscan/pkg/auth"
	"lexscan/pkg/printer"
	"lexscan/pkg/token"
)

func TestScanEndpoint(t *testing.T) {
	var log bytes.Buffer
	srv := httptest.NewServer(New(Options{Log: &log}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/scan?name=demo.c", "text/plain", strings.NewReader("x @ y\nreturn 1;"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status wrong. expected=200, got=%d", resp.StatusCode)
	}

	var res printer.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Source != "demo.c" || res.Digest != printer.Digest([]byte("x @ y\nreturn 1;")) {
		t.Fatalf("unexpected result header: %+v", res)
	}
	if len(res.Tokens) != 6 || res.Tokens[3].Type != token.RETURN || res.Tokens[3].Line != 2 {
		t.Fatalf("unexpected tokens: %+v", res.Tokens)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", res.Diagnostics)
	}
	if !strings.Contains(log.String(), "[POST] /scan 200") {
		t.Fatalf("request not logged: %q", log.String())
	}
}

func TestScanEndpointRejects(t *testing.T) {
	srv := httptest.NewServer(New(Options{MaxBody: 8}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/scan")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /scan: expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/scan", "text/plain", strings.NewReader("int x = 100000;"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: expected 413, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(New(Options{JWTSecret: "secret"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 without a token, got %d", resp.StatusCode)
	}
}

func TestAuthentication(t *testing.T) {
	srv := httptest.NewServer(New(Options{JWTSecret: "secret"}))
	defer srv.Close()

	good, err := auth.SignToken("tester", "secret", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	bad, _ := auth.SignToken("tester", "other", time.Minute)

	tests := []struct {
		header   string
		expected int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer " + bad, http.StatusUnauthorized},
		{"Token " + good, http.StatusUnauthorized},
		{"Bearer " + good, http.StatusOK},
	}
	for i, tt := range tests {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/scan", strings.NewReader("int x;"))
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.expected {
			t.Errorf("tests[%d] - status wrong. expected=%d, got=%d", i, tt.expected, resp.StatusCode)
		}
	}
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestWebSocket(t *testing.T) {
	srv := httptest.NewServer(New(Options{}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?name=live.c"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sources := []string{"if (a <= b)", "while x // loop\nbreak;"}
	counts := []int{6, 4}
	for i, src := range sources {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(src)); err != nil {
			t.Fatal(err)
		}
		var res printer.Result
		if err := conn.ReadJSON(&res); err != nil {
			t.Fatalf("read result %d: %v", i, err)
		}
		if res.Source != "live.c" || len(res.Tokens) != counts[i] {
			t.Fatalf("result %d wrong: %+v", i, res)
		}
		if res.Digest != printer.Digest([]byte(src)) {
			t.Fatalf("result %d digest mismatch", i)
		}
	}
}

func TestWebSocketRejectsBinary(t *testing.T) {
	srv := httptest.NewServer(New(Options{}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseUnsupportedData) {
		t.Fatalf("expected unsupported-data close, got %v", err)
	}
}

func TestWebSocketAuthentication(t *testing.T) {
	srv := httptest.NewServer(New(Options{JWTSecret: "secret"}))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws"), nil)
	if err == nil {
		t.Fatal("expected dial without token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}

	tok, _ := auth.SignToken("tester", "secret", time.Minute)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token="+tok), nil)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	conn.Close()
}
