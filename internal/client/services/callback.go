package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// DefaultCallbackAddr listens on an ephemeral loopback port.
const DefaultCallbackAddr = "127.0.0.1:0"

const donePage = `<!doctype html><title>Authorized</title>
<p>Authorization complete. You can close this window and return to the console.</p>`

// CallbackServer is the loopback endpoint the authorization page reports
// to. It forwards messages to the attached Handshake.
type CallbackServer struct {
	addr string
	log  logging.Logger

	mu        sync.Mutex
	handshake *Handshake
	srv       *http.Server
	ln        net.Listener
}

func NewCallbackServer(addr string, log logging.Logger) *CallbackServer {
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	if log == nil {
		log = logging.Nop()
	}
	return &CallbackServer{addr: addr, log: log}
}

// Router exposes the endpoints:
//
//	POST /auth/message  {"type": "feishu-auth-done", "session_id": "..."}
//	GET  /auth/done?session_id=...
func (s *CallbackServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/auth/message", s.handleMessage).Methods(http.MethodPost)
	r.HandleFunc("/auth/done", s.handleDone).Methods(http.MethodGet)
	return r
}

// Start listens on the configured address. Calling it again is a no-op.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen for auth callback: %w", err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Router(), ReadHeaderTimeout: 5 * time.Second}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(context.Background(), "callback server stopped", "error", err)
		}
	}(s.srv)
	return nil
}

// URL is the base address of a started server.
func (s *CallbackServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Attach routes subsequent messages to h.
func (s *CallbackServer) Attach(h *Handshake) {
	s.mu.Lock()
	s.handshake = h
	s.mu.Unlock()
}

func (s *CallbackServer) deliver(r *http.Request, msg models.AuthMessage) bool {
	s.mu.Lock()
	h := s.handshake
	s.mu.Unlock()

	if h == nil {
		s.log.Debug(r.Context(), "auth callback with no handshake waiting", "type", msg.Type)
		return false
	}
	ok := h.Deliver(msg)
	if !ok {
		s.log.Debug(r.Context(), "auth callback ignored", "type", msg.Type)
	}
	return ok
}

func (s *CallbackServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.AuthMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&msg); err != nil {
		http.Error(w, "invalid message", http.StatusBadRequest)
		return
	}
	if s.deliver(r, msg) {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *CallbackServer) handleDone(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}
	s.deliver(r, models.AuthMessage{Type: models.AuthMessageDone, SessionID: id})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, donePage)
}

// Shutdown stops a started server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv, s.ln = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
