package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestRouterMountsGroupsUnderVersionedPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	leads := NewGroup("/leads")
	leads.POST("", ok)
	leads.GET("/:id", ok)

	admin := leads.Group("/admin")
	admin.GET("/funnel", ok)

	New(engine).Register(leads).Setup()

	for _, tc := range []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/v1/leads", http.StatusOK},
		{http.MethodGet, "/api/v1/leads/abc", http.StatusOK},
		{http.MethodGet, "/api/v1/leads/admin/funnel", http.StatusOK},
		{http.MethodGet, "/v1/leads/abc", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterCustomVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	g := NewGroup("/ping")
	g.GET("", ok)

	New(engine, WithAPIVersion("v2")).Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGroupMiddlewareApplies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var touched bool
	g := NewGroup("/secure")
	g.Use(func(c *gin.Context) { touched = true; c.Next() })
	g.GET("", ok)

	New(engine).Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/secure", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, touched)
}
