package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"lexscan/pkg/auth"
	"lexscan/pkg/lexer"
	"lexscan/pkg/printer"
)

type Options struct {
	// JWTSecret enables bearer authentication on /scan and /ws when set.
	JWTSecret string
	// MaxBody caps request bodies and WebSocket messages, in bytes.
	MaxBody int64
	// Log receives one line per request; nil discards.
	Log io.Writer
}

type Server struct {
	opts     Options
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

func New(opts Options) *Server {
	if opts.MaxBody <= 0 {
		opts.MaxBody = 1 << 20
	}
	if opts.Log == nil {
		opts.Log = io.Discard
	}
	s := &Server{
		opts: opts,
		mux:  http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Authentication is by bearer token, not by origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/scan", s.authenticate(http.HandlerFunc(s.handleScan)))
	s.mux.Handle("/ws", s.authenticate(http.HandlerFunc(s.handleWebSocket)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	fmt.Fprintf(s.opts.Log, "[%s] %s %d\n", r.Method, r.URL.Path, rec.status)
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	fmt.Fprintf(s.opts.Log, "lexscan listening on %s\n", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	if s.opts.JWTSecret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := auth.FromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if _, err := auth.VerifyToken(tok, s.opts.JWTSecret); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "source too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	res, err := scan(r.URL.Query().Get("name"), src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// handleWebSocket scans every text message as an independent source and
// answers with one JSON result per message.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.opts.MaxBody)

	name := r.URL.Query().Get("name")
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text messages only"))
			return
		}
		res, err := scan(name, msg)
		if err != nil {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()))
			return
		}
		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}

// scan runs a fresh Scanner over src.
func scan(name string, src []byte) (printer.Result, error) {
	toks, err := lexer.New().Scan(bytes.NewReader(src))
	if err != nil {
		return printer.Result{}, err
	}
	return printer.NewResult(name, src, toks), nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrader take over the wrapped connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
