package objectstore_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/sagarc03/quire/internal/supaclient"
)

const testBucket = "content"

type object struct {
	data        []byte
	contentType string
}

// fakeStorage mimics the Supabase Storage object API for a single bucket.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]object
	fail    bool
}

func (f *fakeStorage) put(p string, data []byte, ct string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[p] = object{data: data, contentType: ct}
}

func (f *fakeStorage) get(p string) (object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[p]
	return o, ok
}

func (f *fakeStorage) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"statusCode": "500", "error": "internal", "message": "storage unavailable"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/")
	switch {
	case r.Method == http.MethodPost && rest == "list/"+testBucket:
		var body struct {
			Prefix string `json:"prefix"`
			Limit  int    `json:"limit"`
			Offset int    `json:"offset"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, f.list(body.Prefix, body.Offset, body.Limit))

	case r.Method == http.MethodDelete && rest == testBucket:
		var body struct {
			Prefixes []string `json:"prefixes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		removed := []map[string]string{}
		for _, p := range body.Prefixes {
			if _, ok := f.objects[p]; ok {
				delete(f.objects, p)
				removed = append(removed, map[string]string{"name": p})
			}
		}
		writeJSON(w, http.StatusOK, removed)

	case strings.HasPrefix(rest, testBucket+"/"):
		p := strings.TrimPrefix(rest, testBucket+"/")
		switch r.Method {
		case http.MethodGet:
			o, ok := f.objects[p]
			if !ok {
				writeJSON(w, http.StatusBadRequest, map[string]string{"statusCode": "404", "error": "not_found", "message": "Object not found"})
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(o.data)
		case http.MethodPost, http.MethodPut:
			if _, exists := f.objects[p]; exists && r.Header.Get("X-Upsert") != "true" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"statusCode": "409", "error": "Duplicate", "message": "The resource already exists"})
				return
			}
			data, _ := io.ReadAll(r.Body)
			f.objects[p] = object{data: data, contentType: r.Header.Get("Content-Type")}
			writeJSON(w, http.StatusOK, map[string]string{"Key": testBucket + "/" + p})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// list returns the direct children of prefix: files with metadata, folders with a null id.
func (f *fakeStorage) list(prefix string, offset, limit int) []map[string]any {
	prefix = strings.TrimSuffix(prefix, "/")
	seen := map[string]bool{}
	var out []map[string]any

	for p, o := range f.objects {
		rest := p
		if prefix != "" {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rest = strings.TrimPrefix(p, prefix+"/")
		}

		name, _, isFolder := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true

		if isFolder {
			out = append(out, map[string]any{"name": name, "id": nil, "metadata": nil})
			continue
		}
		out = append(out, map[string]any{
			"name":     name,
			"id":       "obj-" + name,
			"metadata": map[string]any{"mimetype": o.contentType, "size": len(o.data)},
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i]["name"].(string) < out[j]["name"].(string) })

	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setupFake(t *testing.T) (*fakeStorage, *supaclient.Lazy) {
	t.Helper()

	fake := &fakeStorage{objects: map[string]object{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return fake, supaclient.NewLazy(supaclient.Config{URL: srv.URL, Key: "service-role"})
}
