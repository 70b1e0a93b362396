// Package server exposes the synthesizer over HTTP: the patch, the
// module schema, node and connection editing, note input, scopes and the
// assistant chat.
package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
	"github.com/cwbudde/algo-modsynth/internal/assistant"
)

// Server holds the handlers' dependencies.
type Server struct {
	graph     *graph.Graph
	registry  *module.Registry
	assistant *assistant.Service
	version   string

	analyzerMu sync.Mutex
	analyzer   *scope.Analyzer
}

// New creates a server. svc may be nil, which disables the chat routes.
func New(g *graph.Graph, reg *module.Registry, svc *assistant.Service, version string) *Server {
	return &Server{graph: g, registry: reg, assistant: svc, version: version}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(RecoverWithSentry())
	router.Use(SentryMiddleware())
	router.Use(RequestTracking())

	router.GET("/health", s.health)

	api := router.Group("/api")
	{
		api.GET("/patch", s.getPatch)
		api.PUT("/patch", s.putPatch)
		api.GET("/schema", s.getSchema)
		api.GET("/modules", s.getModules)

		api.POST("/nodes", s.createNode)
		api.DELETE("/nodes/:id", s.deleteNode)
		api.PUT("/nodes/:id/params", s.setParams)
		api.PUT("/nodes/:id/position", s.setPosition)

		api.POST("/connections", s.createConnection)
		api.DELETE("/connections", s.deleteConnection)

		api.POST("/keyboard/:id", s.keyboard)
		api.GET("/scope/:id", s.getScope)

		api.GET("/chat", s.getChat)
		api.POST("/chat", s.postChat)
		api.DELETE("/chat", s.clearChat)
		api.POST("/chat/apply", s.applyChat)
		api.GET("/models", s.getModels)
	}
	return router
}

func (s *Server) health(c *gin.Context) {
	provider := "disabled"
	if s.assistant != nil && s.assistant.ProviderName() != "" {
		provider = s.assistant.ProviderName()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   s.version,
		"nodes":     s.graph.Len(),
		"prepared":  s.graph.Prepared(),
		"assistant": provider,
	})
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error(), "request_id": c.GetString("request_id")})
}

// graphStatus maps graph errors onto HTTP statuses.
func graphStatus(err error) int {
	switch {
	case errors.Is(err, graph.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
