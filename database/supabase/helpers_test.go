package supabase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/supabase"
	"github.com/sagarc03/quire/internal/supaclient"
	"github.com/stretchr/testify/require"
)

const testTable = "workspace_files"

// fakeRest is an in-memory stand-in for the subset of PostgREST the repo speaks:
// eq filters, order by created_at/id descending, offset/limit, exact counts and
// return=representation.
type fakeRest struct {
	mu       sync.Mutex
	rows     []map[string]any
	hideEcho bool
	fail     bool
	requests int
}

func (f *fakeRest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if f.fail {
		writeError(w, http.StatusInternalServerError, "XX000", "boom")
		return
	}

	if r.URL.Path != "/rest/v1/"+testTable {
		writeError(w, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}

	q := r.URL.Query()
	if sel := q.Get("select"); sel != "" && sel != "*" {
		for _, col := range strings.Split(sel, ",") {
			if !knownColumn(col) {
				writeError(w, http.StatusBadRequest, "42703", "column "+col+" does not exist")
				return
			}
		}
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		matched := f.filter(q)
		total := len(matched)
		matched = window(matched, q)
		if strings.Contains(r.Header.Get("Prefer"), "count=exact") {
			w.Header().Set("Content-Range", fmt.Sprintf("0-%d/%d", len(matched), total))
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, matched)

	case http.MethodPost:
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", "bad body")
			return
		}
		for _, existing := range f.rows {
			if existing["id"] == in["id"] {
				writeError(w, http.StatusConflict, "23505", "duplicate key value violates unique constraint")
				return
			}
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		in["created_at"] = now
		in["updated_at"] = now
		f.rows = append(f.rows, in)
		if f.hideEcho {
			writeJSON(w, http.StatusCreated, []map[string]any{})
			return
		}
		writeJSON(w, http.StatusCreated, []map[string]any{in})

	case http.MethodPatch:
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", "bad body")
			return
		}
		matched := f.filter(q)
		for _, m := range matched {
			for k, v := range in {
				m[k] = v
			}
		}
		writeJSON(w, http.StatusOK, matched)

	case http.MethodDelete:
		matched := f.filter(q)
		kept := f.rows[:0]
		for _, rw := range f.rows {
			if !contains(matched, rw) {
				kept = append(kept, rw)
			}
		}
		f.rows = kept
		writeJSON(w, http.StatusOK, matched)

	default:
		writeError(w, http.StatusMethodNotAllowed, "PGRST000", "method not allowed")
	}
}

func (f *fakeRest) setHideEcho(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hideEcho = v
}

func (f *fakeRest) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeRest) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func knownColumn(col string) bool {
	switch col {
	case "id", "workspace_id", "owner_id", "type", "name", "created_at", "updated_at":
		return true
	}
	return false
}

func (f *fakeRest) filter(q map[string][]string) []map[string]any {
	var out []map[string]any
	for _, rw := range f.rows {
		ok := true
		for key, vals := range q {
			if !knownColumn(key) {
				continue
			}
			want := strings.TrimPrefix(vals[0], "eq.")
			if fmt.Sprint(rw[key]) != want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rw)
		}
	}
	return out
}

func window(rows []map[string]any, q map[string][]string) []map[string]any {
	if _, ok := q["order"]; ok {
		sort.SliceStable(rows, func(i, j int) bool {
			ci, cj := rows[i]["created_at"].(string), rows[j]["created_at"].(string)
			if ci != cj {
				ti, _ := time.Parse(time.RFC3339Nano, ci)
				tj, _ := time.Parse(time.RFC3339Nano, cj)
				return ti.After(tj)
			}
			return fmt.Sprint(rows[i]["id"]) > fmt.Sprint(rows[j]["id"])
		})
	}
	offset, _ := strconv.Atoi(first(q["offset"]))
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if l := first(q["limit"]); l != "" {
		n, _ := strconv.Atoi(l)
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	return rows
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func contains(rows []map[string]any, rw map[string]any) bool {
	for _, m := range rows {
		if m["id"] == rw["id"] {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "message": msg})
}

func setupFake(t *testing.T) (*fakeRest, *supaclient.Lazy) {
	t.Helper()

	fake := &fakeRest{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return fake, supaclient.NewLazy(supaclient.Config{URL: srv.URL, Key: "service-role"})
}

func setupTestRepo(t *testing.T) (quire.RecordRepo, *fakeRest) {
	t.Helper()

	fake, client := setupFake(t)
	db, err := supabase.Connect(context.Background(), client, quire.Tables{Records: testTable})
	require.NoError(t, err)

	return db.GetRepo(), fake
}
