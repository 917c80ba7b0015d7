package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/auth"
	quirehttp "github.com/sagarc03/quire/http"
	"github.com/sagarc03/quire/keybackend"
	"github.com/stretchr/testify/mock"
)

const (
	testToken = "token-alice"
	testOwner = "alice"
	testWS    = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	testID    = "9b2f6a4e-1c3d-4e5f-8a9b-0c1d2e3f4a5b"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, obj quire.CreateRecord) (quire.Record, error) {
	args := m.Called(ctx, obj)
	return args.Get(0).(quire.Record), args.Error(1)
}

func (m *MockService) List(ctx context.Context, scope quire.Scope, t quire.FileType, page quire.Page) ([]quire.Record, quire.PageMeta, error) {
	args := m.Called(ctx, scope, t, page)
	records, _ := args.Get(0).([]quire.Record)
	return records, args.Get(1).(quire.PageMeta), args.Error(2)
}

func (m *MockService) Rename(ctx context.Context, scope quire.Scope, id string, name string) (quire.Record, error) {
	args := m.Called(ctx, scope, id, name)
	return args.Get(0).(quire.Record), args.Error(1)
}

func (m *MockService) ReadContent(ctx context.Context, scope quire.Scope, id string, want quire.FileType) (quire.Content, error) {
	args := m.Called(ctx, scope, id, want)
	return args.Get(0).(quire.Content), args.Error(1)
}

func (m *MockService) WriteContent(ctx context.Context, scope quire.Scope, id string, want quire.FileType, content io.Reader, contentType string) (quire.SaveResult, error) {
	// drain so the handler sees the body consumed, like the real service
	body, err := io.ReadAll(content)
	if err != nil {
		return quire.SaveResult{}, err
	}
	args := m.Called(ctx, scope, id, want, string(body), contentType)
	return args.Get(0).(quire.SaveResult), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, scope quire.Scope, id string, want quire.FileType) error {
	args := m.Called(ctx, scope, id, want)
	return args.Error(0)
}

func testVerifier() auth.Verifier {
	return auth.NewStaticVerifier(keybackend.NewMapTokenStore(map[string]string{testToken: testOwner}))
}

func newTestHandler(t *testing.T, cfg quirehttp.HandlerConfig) (http.Handler, *MockService) {
	t.Helper()
	if cfg.Verifier == nil {
		cfg.Verifier = testVerifier()
	}
	service := new(MockService)
	t.Cleanup(func() { service.AssertExpectations(t) })
	return quirehttp.NewHandler(&cfg, service).Router(), service
}

func do(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func wsScope() quire.Scope {
	return quire.Scope{WorkspaceID: testWS, OwnerID: testOwner}
}

func personalScope() quire.Scope {
	return quire.Scope{WorkspaceID: testOwner, OwnerID: testOwner}
}
