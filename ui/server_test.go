package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tolninja/adapters/memory"
	"tolninja/app"
	"tolninja/domain/stackup"
	"tolninja/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	service := app.NewStackupService(memory.NewStackupRepository(), nil, "", app.EngineSettings{}, nil)
	return NewServer(service, nil)
}

func definitionJSON() map[string]interface{} {
	return map[string]interface{}{
		"name":             "web stack",
		"lower_spec_limit": 14.5,
		"upper_spec_limit": 15.5,
		"num_samples":      2000,
		"steps": []map[string]interface{}{
			{
				"part_name": "base",
				"distribution": map[string]interface{}{
					"kind": "norm",
					"mean": 15.0,
					"std":  0.05,
				},
			},
		},
	}
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer()
	rec := doJSON(t, srv, http.MethodPost, "/api/stackups/analyze", map[string]interface{}{
		"definition": definitionJSON(),
		"seed":       11,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var result stackup.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Name != "web stack" {
		t.Errorf("result name %q", result.Name)
	}
	if result.Summary == nil || result.Summary.Samples != 2000 {
		t.Errorf("unexpected summary %+v", result.Summary)
	}
}

func TestAnalyzeEndpointRejectsBadDefinition(t *testing.T) {
	srv := newTestServer()
	def := definitionJSON()
	def["steps"] = []map[string]interface{}{}

	rec := doJSON(t, srv, http.MethodPost, "/api/stackups/analyze", map[string]interface{}{
		"definition": def,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSaveGetDeleteFlow(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/stackups", map[string]interface{}{
		"definition": definitionJSON(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save returned %d: %s", rec.Code, rec.Body.String())
	}
	var saved models.StackupRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Fatal("saved record has no id")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/stackups/"+saved.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/stackups", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), saved.ID.String()) {
		t.Fatalf("list returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/stackups/"+saved.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/stackups/"+saved.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAnalyzeStoredEndpoint(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/stackups", map[string]interface{}{
		"definition": definitionJSON(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save returned %d", rec.Code)
	}
	var saved models.StackupRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/stackups/"+saved.ID.String()+"/analyze", map[string]interface{}{
		"seed": 5,
		"custom_limits": map[string]interface{}{
			"lower": 14.8,
			"upper": 15.2,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("stored analyze returned %d: %s", rec.Code, rec.Body.String())
	}
	var result stackup.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Summary.CustomLimits == nil || result.Summary.CustCpk == nil {
		t.Error("custom limit statistics missing from stored analysis")
	}
}

func TestHTMLReportEndpoint(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/stackups", map[string]interface{}{
		"definition": definitionJSON(),
	})
	var saved models.StackupRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/stackups/"+saved.ID.String()+"/report.html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("html report returned %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<table>") || !strings.Contains(body, "web stack") {
		t.Error("html report missing expected content")
	}
}

func TestInvalidIDRejected(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/api/stackups/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}
