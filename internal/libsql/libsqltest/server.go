// Package libsqltest provides an in-process libSQL HTTP server backed by an
// in-memory SQLite database, for tests that exercise libsql.Client end to
// end.
package libsqltest

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	_ "modernc.org/sqlite"
)

// Request kinds as recognised by the server.
const (
	KindKeyed   = "pipeline"
	KindTyped   = "pipeline-typed"
	KindExecute = "execute"
)

var dbSeq atomic.Int64

// Request is a recorded incoming request.
type Request struct {
	Kind   string
	Path   string
	Header http.Header
	Body   []byte
}

// Server is a fake libSQL endpoint. Zero or more request kinds can be made
// to fail with a fixed HTTP status via Reject.
type Server struct {
	*httptest.Server

	DB    *sql.DB
	Token string

	mu       sync.Mutex
	rejected map[string]int
	requests []Request
}

// New starts a server requiring token as bearer credential. It is closed
// with the test.
func New(t testing.TB, token string) *Server {
	t.Helper()

	dsn := fmt.Sprintf("file:libsqltest%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)

	s := &Server{DB: db, Token: token, rejected: map[string]int{}}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	// Turso answers browser preflights without credentials and tags every
	// response with CORS headers. The fake does the same so recorded
	// responses match the hosted endpoint; Go clients ignore the headers.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(s.authenticate)
	r.Post("/v2/pipeline", s.pipeline)
	r.Post("/v1/execute", s.execute)

	s.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		s.Close()
		_ = db.Close()
	})
	return s
}

// Reject makes requests of the given kind fail with status. A zero status
// clears the rule.
func (s *Server) Reject(kind string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.rejected, kind)
		return
	}
	s.rejected[kind] = status
}

// Requests returns a copy of all requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Hits counts received requests of the given kind.
func (s *Server) Hits(kind string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// record stores the request and reports the configured rejection status.
func (s *Server) record(kind string, r *http.Request, body []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Kind: kind, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
	return s.rejected[kind]
}

type stmt struct {
	SQL      string            `json:"sql"`
	Args     []json.RawMessage `json:"args"`
	WantRows bool              `json:"want_rows"`
}

type pipelineBody struct {
	Baton    *string          `json:"baton"`
	Requests []map[string]any `json:"requests"`
}

func (s *Server) pipeline(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req pipelineBody
	if err := json.Unmarshal(body, &req); err != nil || len(req.Requests) == 0 {
		s.record(KindKeyed, r, body)
		http.Error(w, `{"error":"malformed pipeline"}`, http.StatusBadRequest)
		return
	}

	kind := KindTyped
	if _, keyed := req.Requests[0]["execute"]; keyed {
		kind = KindKeyed
	}
	if status := s.record(kind, r, body); status != 0 {
		http.Error(w, fmt.Sprintf(`{"error":"rejected %s"}`, kind), status)
		return
	}

	results := make([]map[string]any, 0, len(req.Requests))
	for _, step := range req.Requests {
		st, isExecute, err := decodeStep(step, kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !isExecute {
			results = append(results, map[string]any{"type": "ok", "response": map[string]any{"type": "close"}})
			continue
		}
		res, err := s.run(r.Context(), st)
		if err != nil {
			results = append(results, map[string]any{
				"type":  "error",
				"error": map[string]any{"message": err.Error(), "code": "SQLITE_ERROR"},
			})
			continue
		}
		results = append(results, map[string]any{
			"type":     "ok",
			"response": map[string]any{"type": "execute", "result": res},
		})
	}

	writeJSON(w, map[string]any{"baton": nil, "base_url": nil, "results": results})
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if status := s.record(KindExecute, r, body); status != 0 {
		http.Error(w, `{"error":"rejected execute"}`, status)
		return
	}

	var req struct {
		Stmt stmt `json:"stmt"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, `{"error":"malformed request"}`, http.StatusBadRequest)
		return
	}

	res, err := s.run(r.Context(), req.Stmt)
	if err != nil {
		writeJSON(w, map[string]any{"error": err.Error()})
		return
	}

	// The legacy endpoint answers with a flat table: column names and rows.
	names := make([]string, len(res.Cols))
	for i, c := range res.Cols {
		names[i] = c.Name
	}
	rows := res.Rows
	if rows == nil {
		rows = [][]map[string]any{}
	}
	writeJSON(w, map[string]any{
		"columns":            names,
		"rows":               rows,
		"affected_row_count": res.AffectedRowCount,
		"last_insert_rowid":  res.LastInsertRowID,
	})
}

// decodeStep extracts the statement from a keyed or typed pipeline step.
func decodeStep(step map[string]any, kind string) (stmt, bool, error) {
	var raw any
	switch kind {
	case KindKeyed:
		if _, ok := step["close"]; ok {
			return stmt{}, false, nil
		}
		exec, _ := step["execute"].(map[string]any)
		raw = exec["stmt"]
	default:
		if step["type"] != "execute" {
			return stmt{}, false, nil
		}
		raw = step["stmt"]
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return stmt{}, false, err
	}
	var st stmt
	if err := json.Unmarshal(b, &st); err != nil {
		return stmt{}, false, err
	}
	return st, true, nil
}

type column struct {
	Name string `json:"name"`
}

type result struct {
	Cols             []column           `json:"cols"`
	Rows             [][]map[string]any `json:"rows"`
	AffectedRowCount int64              `json:"affected_row_count"`
	LastInsertRowID  *string            `json:"last_insert_rowid"`
}

func (s *Server) run(ctx context.Context, st stmt) (*result, error) {
	args := make([]any, 0, len(st.Args))
	for _, a := range st.Args {
		v, err := decodeArg(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if !st.WantRows {
		res, err := s.DB.ExecContext(ctx, st.SQL, args...)
		if err != nil {
			return nil, err
		}
		out := &result{Cols: []column{}, Rows: [][]map[string]any{}}
		out.AffectedRowCount, _ = res.RowsAffected()
		if id, err := res.LastInsertId(); err == nil {
			sid := strconv.FormatInt(id, 10)
			out.LastInsertRowID = &sid
		}
		return out, nil
	}

	rows, err := s.DB.QueryContext(ctx, st.SQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := &result{Cols: make([]column, len(names)), Rows: [][]map[string]any{}}
	for i, n := range names {
		out.Cols[i] = column{Name: n}
	}

	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]map[string]any, len(cells))
		for i, c := range cells {
			row[i] = encodeCell(c)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

// decodeArg turns a wire envelope into a driver value.
func decodeArg(raw json.RawMessage) (any, error) {
	var env struct {
		Type   string  `json:"type"`
		Value  *string `json:"value"`
		Base64 *string `json:"base64"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case "null":
		return nil, nil
	case "blob":
		if env.Base64 == nil {
			return []byte{}, nil
		}
		return base64.StdEncoding.DecodeString(*env.Base64)
	}
	if env.Value == nil {
		return nil, fmt.Errorf("argument of type %q has no value", env.Type)
	}
	switch env.Type {
	case "integer":
		return strconv.ParseInt(*env.Value, 10, 64)
	case "float":
		return strconv.ParseFloat(*env.Value, 64)
	case "text":
		return *env.Value, nil
	default:
		return nil, fmt.Errorf("unknown argument type %q", env.Type)
	}
}

// encodeCell renders a scanned SQLite value as a wire envelope. Integers
// travel as decimal strings.
func encodeCell(v any) map[string]any {
	switch x := v.(type) {
	case nil:
		return map[string]any{"type": "null"}
	case int64:
		return map[string]any{"type": "integer", "value": strconv.FormatInt(x, 10)}
	case float64:
		return map[string]any{"type": "float", "value": x}
	case bool:
		n := "0"
		if x {
			n = "1"
		}
		return map[string]any{"type": "integer", "value": n}
	case []byte:
		return map[string]any{"type": "blob", "base64": base64.StdEncoding.EncodeToString(x)}
	case time.Time:
		return map[string]any{"type": "text", "value": x.UTC().Format("2006-01-02T15:04:05.000Z")}
	default:
		return map[string]any{"type": "text", "value": fmt.Sprint(x)}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
