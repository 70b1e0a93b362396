package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-modsynth/dsp/patch"
	"github.com/cwbudde/algo-modsynth/internal/logger"
)

const maxPatchBytes = 1 << 20

func (s *Server) getPatch(c *gin.Context) {
	c.JSON(http.StatusOK, patch.Export(s.graph))
}

// putPatch imports the request body. clear defaults to true.
func (s *Server) putPatch(c *gin.Context) {
	clearExisting := true
	if v := c.Query("clear"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, errors.New("clear must be a boolean"))
			return
		}
		clearExisting = b
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBytes))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	res, err := patch.Import(raw, s.graph, s.registry, clearExisting)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	fields := logger.WithContext(c)
	fields["nodes"] = res.NodesCreated
	fields["connections"] = res.ConnectionsApplied
	fields["clear"] = clearExisting
	logger.Info("patch imported", fields)
	for _, d := range res.Diagnostics {
		logger.Warn("patch import", logger.Fields{"request_id": c.GetString("request_id"), "diagnostic": d})
	}
	c.JSON(http.StatusOK, res)
}

// getSchema returns the module schema, or markdown with ?format=markdown.
func (s *Server) getSchema(c *gin.Context) {
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(patch.SchemaMarkdown(s.registry)))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"modules":  patch.Schema(s.registry),
		"document": patch.DocumentSchema(s.registry),
	})
}

func (s *Server) getModules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modules": s.registry.Names()})
}
