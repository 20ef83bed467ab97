package proxy_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/paradies-dashboard/internal/proxy"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestProxy_PathRewriting(t *testing.T) {
	var receivedPath string

	fakeAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer fakeAPI.Close()

	apiProxy, err := proxy.New(fakeAPI.URL+"/api", "/api", "")
	assert.NoError(t, err)

	// Routed the same way the dashboard router does it.
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Handle("/*", apiProxy)
	})

	testCases := []struct {
		name         string
		requestPath  string
		expectedPath string
	}{
		{
			name:         "list users",
			requestPath:  "/api/user",
			expectedPath: "/api/user",
		},
		{
			name:         "single user",
			requestPath:  "/api/user/7",
			expectedPath: "/api/user/7",
		},
		{
			name:         "login",
			requestPath:  "/api/login",
			expectedPath: "/api/login",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			receivedPath = ""
			req := httptest.NewRequest(http.MethodGet, tc.requestPath, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedPath, receivedPath, "upstream path for %s", tc.requestPath)
		})
	}
}
