package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bdgeo/location-api/pkg/search"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSearcher struct {
	got search.SearchOptions
	err error
}

func (f *fakeSearcher) Search(_ context.Context, opts search.SearchOptions) (search.SearchResults, error) {
	f.got = opts
	return search.SearchResults{Results: []search.SearchResult{}, Query: opts.Query}, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/x", h)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func TestSearchHandler_Options(t *testing.T) {
	tests := []struct {
		target string
		want   search.SearchOptions
	}{
		{"/x?q=dhaka", search.SearchOptions{Query: "dhaka", Limit: 20, Fuzzy: true}},
		{"/x?q=dhaka&fuzzy=false&limit=5", search.SearchOptions{Query: "dhaka", Limit: 5}},
		{"/x?q=savar&level=upazila", search.SearchOptions{Query: "savar", Limit: 20, Level: "upazila", Fuzzy: true}},
	}
	for _, tt := range tests {
		f := &fakeSearcher{}
		w := serve(NewSearchHandler(f).Search, tt.target)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, body %s", tt.target, w.Code, w.Body.String())
			continue
		}
		if f.got != tt.want {
			t.Errorf("GET %s options = %+v, want %+v", tt.target, f.got, tt.want)
		}
	}
}

func TestSearchHandler_Failure(t *testing.T) {
	f := &fakeSearcher{err: errors.New("index closed")}
	w := serve(NewSearchHandler(f).Search, "/x?q=dhaka")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	if w := serve(HealthHandler(fakePinger{}), "/x"); w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}
	w := serve(HealthHandler(fakePinger{err: errors.New("dial tcp db.internal:5432: connection refused")}), "/x")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"unavailable"}` {
		t.Errorf("unhealthy body = %s", got)
	}
}

func TestOpenAPIHandler_UnknownFormat(t *testing.T) {
	h, err := NewOpenAPIHandler(testOpenAPIConfig(), 20)
	if err != nil {
		t.Fatalf("NewOpenAPIHandler() error: %v", err)
	}
	if w := serve(h.Schema, "/x?format=xml"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := serve(h.Schema, "/x?format=json"); w.Header().Get("Content-Type") != contentTypeOpenAPIJSON {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}
