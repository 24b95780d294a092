package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/dfspanel/internal/connection"
	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/types"
)

const (
	codeOK = 20000
	// Keep only the last maxLogs requests
	maxLogs = 1000
)

type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

type tableRow struct {
	Name    string `json:"tableName"`
	Comment string `json:"tableComment"`
	Key     string `json:"key"`
}

type artifactRow struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	Code string `json:"code"`
}

// Server is a stand-in for the dfs-generate service
type Server struct {
	fixture    *Fixture
	httpServer *http.Server
	listener   net.Listener
	workdir    string
	logger     *slog.Logger

	connMutex sync.RWMutex
	conn      *types.ConnectionConfig

	logs      []RequestLog
	logsMutex sync.RWMutex
	notifyCh  chan struct{} // Channel to notify when new log arrives
}

// NewServer creates a mock server. workdir resolves artifact codeFile paths.
func NewServer(fixture *Fixture, workdir string, logger *slog.Logger) *Server {
	if fixture.Port == 0 {
		fixture.Port = 8080
	}
	if fixture.Host == "" {
		fixture.Host = "localhost"
	}

	s := &Server{
		fixture:  fixture,
		workdir:  workdir,
		logger:   logging.OrDiscard(logger),
		logs:     make([]RequestLog, 0),
		notifyCh: make(chan struct{}, 100),
	}
	if fixture.Connection != nil {
		cfg := fixture.Connection.WithDefaults()
		s.conn = &cfg
	}
	return s
}

// Handler returns the HTTP handler serving the four service endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /con", s.handleConnection)
	mux.HandleFunc("POST /conf", s.handleConfigure)
	mux.HandleFunc("GET /tables", s.handleTables)
	mux.HandleFunc("GET /codegen", s.handleCodegen)
	return s.withLogging(mux)
}

// Start listens on the fixture address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.fixture.Host, strconv.Itoa(s.fixture.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("mock server error", "error", err)
		}
	}()

	s.logger.Info("mock server started", "address", s.GetAddress(), "tables", len(s.fixture.Tables))
	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server base URL
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + net.JoinHostPort(s.fixture.Host, strconv.Itoa(s.fixture.Port))
}

// Connection returns the connection the mock currently holds
func (s *Server) Connection() (types.ConnectionConfig, bool) {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	if s.conn == nil {
		return types.ConnectionConfig{}, false
	}
	return *s.conn, true
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.Connection()
	if !ok {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: "error"})
		return
	}
	writeEnvelope(w, envelope{Code: codeOK, Msg: "ok", Data: cfg})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var cfg types.ConnectionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: fmt.Sprintf("invalid payload: %v", err)})
		return
	}

	cfg = cfg.WithDefaults()
	if err := connection.Validate(cfg); err != nil {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: err.Error()})
		return
	}
	if !s.acceptsDatabase(cfg.Database) {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: fmt.Sprintf("(1049, \"Unknown database '%s'\")", cfg.Database)})
		return
	}

	s.connMutex.Lock()
	s.conn = &cfg
	s.connMutex.Unlock()

	writeEnvelope(w, envelope{Code: codeOK, Msg: "ok"})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.Connection(); !ok {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: "no database connection configured"})
		return
	}

	like := r.URL.Query().Get("tableName")
	rows := make([]tableRow, 0, len(s.fixture.Tables))
	for _, t := range s.fixture.Tables {
		if strings.Contains(t.Name, like) {
			rows = append(rows, tableRow{Name: t.Name, Comment: t.Comment, Key: t.Name})
		}
	}
	writeEnvelope(w, envelope{Code: codeOK, Msg: "ok", Data: rows})
}

func (s *Server) handleCodegen(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.Connection()
	if !ok {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: "no database connection configured"})
		return
	}

	name := r.URL.Query().Get("tableName")
	table := s.findTable(name)
	if table == nil {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: fmt.Sprintf("(1146, \"Table '%s.%s' doesn't exist\")", cfg.Database, name)})
		return
	}

	if table.Delay > 0 {
		select {
		case <-time.After(time.Duration(table.Delay) * time.Millisecond):
		case <-r.Context().Done():
			return
		}
	}

	if table.Fail != "" {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: table.Fail})
		return
	}

	// The service treats anything but sqlmodel as tortoise
	mode := types.ModeTortoise
	if r.URL.Query().Get("mode") == string(types.ModeSQLModel) {
		mode = types.ModeSQLModel
	}

	artifacts, found := artifactsFor(table, mode)
	if !found {
		writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: fmt.Sprintf("no %s fixture for table %s", mode, name)})
		return
	}

	rows := make([]artifactRow, 0, len(artifacts))
	for _, a := range artifacts {
		code, err := s.artifactCode(a)
		if err != nil {
			writeEnvelope(w, envelope{Code: types.ErrorSentinel, Msg: err.Error()})
			return
		}
		key := a.Key
		if key == "" {
			key = a.Name
		}
		rows = append(rows, artifactRow{Name: a.Name, Key: key, Code: code})
	}
	writeEnvelope(w, envelope{Code: codeOK, Msg: "ok", Data: rows})
}

func (s *Server) acceptsDatabase(db string) bool {
	if len(s.fixture.Databases) == 0 {
		return true
	}
	for _, d := range s.fixture.Databases {
		if d == db {
			return true
		}
	}
	return false
}

func (s *Server) findTable(name string) *Table {
	for i := range s.fixture.Tables {
		if s.fixture.Tables[i].Name == name {
			return &s.fixture.Tables[i]
		}
	}
	return nil
}

func artifactsFor(table *Table, mode types.GenerationMode) ([]Artifact, bool) {
	for key, artifacts := range table.Artifacts {
		if parsed, err := types.ParseMode(key); err == nil && parsed == mode {
			return artifacts, true
		}
	}
	return nil, false
}

func (s *Server) artifactCode(a Artifact) (string, error) {
	if a.CodeFile == "" {
		return a.Code, nil
	}
	path := a.CodeFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workdir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read code file %s: %w", a.CodeFile, err)
	}
	return string(data), nil
}

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Envelope-Code", strconv.Itoa(env.Code))
	json.NewEncoder(w).Encode(env)
}

// statusRecorder captures what a handler wrote for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		bodyBytes, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		code, _ := strconv.Atoi(rec.Header().Get("X-Envelope-Code"))
		duration := time.Since(start)

		s.logger.Debug("mock request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "code", code, "duration", duration)

		if s.fixture.Logging != nil && !*s.fixture.Logging {
			return
		}
		s.logRequest(RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Body:      string(bodyBytes),
			Status:    rec.status,
			Code:      code,
			Duration:  duration,
		})
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	// Notify listeners (non-blocking)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// RequestCount returns how many logged requests hit path
func (s *Server) RequestCount(path string) int {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	n := 0
	for _, l := range s.logs {
		if l.Path == path {
			n++
		}
	}
	return n
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}
