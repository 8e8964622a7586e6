package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/pending", dummyHandler())

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/pending", routes[0].Url)
}

func TestRouterProvider_MultipleRoutes(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/a", dummyHandler())
	rp.Get("/b", dummyHandler())
	rp.Get("/c", dummyHandler())

	assert.Len(t, rp.GetRoutes(), 3)
}

func TestRouterProvider_AllowsGetAndHead(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/pending", dummyHandler())
	route := rp.GetRoutes()[0]

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		rr := httptest.NewRecorder()
		route.Handler.ServeHTTP(rr, httptest.NewRequest(method, "/pending", nil))
		assert.Equal(t, http.StatusOK, rr.Code, method)
	}
}

func TestRouterProvider_RejectsWrites(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/pending", dummyHandler())
	route := rp.GetRoutes()[0]

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rr := httptest.NewRecorder()
		route.Handler.ServeHTTP(rr, httptest.NewRequest(method, "/pending", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
	}
}
