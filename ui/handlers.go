package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tolninja/adapters/report"
	"tolninja/app"
	"tolninja/domain/stackup"
	"tolninja/internal/errors"
)

// analyzeStoredRequest carries the optional knobs for re-running a stored
// stackup. Partial custom limits are treated as not supplied downstream.
type analyzeStoredRequest struct {
	CustomLimits *stackup.Limits `json:"custom_limits,omitempty"`
	Seed         int64           `json:"seed,omitempty"`
}

type saveRequest struct {
	Definition stackup.StackupDefinition `json:"definition"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req app.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	result, err := s.service.Analyze(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	record, err := s.service.Save(c.Request.Context(), uuid.Nil, req.Definition, nil)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	record, err := s.service.Save(c.Request.Context(), id, req.Definition, nil)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleList(c *gin.Context) {
	records, err := s.service.List(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stackups": records})
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	record, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	if err := s.service.Delete(c.Request.Context(), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAnalyzeStored(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	var req analyzeStoredRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}
	result, err := s.service.AnalyzeStored(c.Request.Context(), id, req.CustomLimits, req.Seed)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHTMLReport(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	result, err := s.service.AnalyzeStored(c.Request.Context(), id, nil, 0)
	if err != nil {
		s.renderError(c, err)
		return
	}
	md := report.BuildMarkdown(result)
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.ToHTML(md))
}

func (s *Server) handleExcelReport(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	var req analyzeStoredRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}
	path, err := s.service.WriteReport(c.Request.Context(), id, req.CustomLimits, req.Seed)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.FileAttachment(path, "stackup-report.xlsx")
}

func (s *Server) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stackup id"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) renderError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidDefinition:
		status = http.StatusBadRequest
	case errors.CodeTruncationBudget, errors.CodeComputationFailed:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
