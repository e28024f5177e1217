package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService returns a canned batch result for handler tests.
type stubService struct {
	result *BatchResult
	err    error
}

func (s *stubService) RunBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	return s.result, s.err
}

func (s *stubService) RunApprovedBatch(ctx context.Context, organization string) (*BatchResult, error) {
	return s.result, s.err
}

func (s *stubService) MarkReviewed(ctx context.Context, id uuid.UUID) (*Record, error) {
	return nil, s.err
}

func (s *stubService) RedownloadIssued(ctx context.Context, id uuid.UUID) (*Document, error) {
	return nil, s.err
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(service).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postApproved(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	body := bytes.NewBufferString(`{"organization":"DLithe"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/approved", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBundleResponseCarriesDiagnostics(t *testing.T) {
	result := &BatchResult{
		Documents:   []Document{{Filename: "Asha_Rao_DLWD1RV21IS002MAR24.pdf", Content: []byte("%PDF")}},
		RowErrors:   []RowError{{Row: 1, Name: "Ravi Kumar", Err: ErrMissingReferenceDate}},
		Diagnostics: []string{"logo omitted: no path configured"},
		BundleName:  "Certificates_20240315_120000.zip",
	}

	w := postApproved(t, newTestRouter(&stubService{result: result}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("X-Document-Count"))
	assert.Equal(t, "1", w.Header().Get("X-Row-Error-Count"))
	assert.Contains(t, w.Header().Get("X-Row-Errors"), "Ravi Kumar")
	assert.Equal(t, "1", w.Header().Get("X-Diagnostic-Count"))
	assert.Contains(t, w.Header().Get("X-Diagnostics"), "logo omitted")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestEmptyBundleResponseReportsDiagnostics(t *testing.T) {
	result := &BatchResult{
		Diagnostics: []string{"no eligible records"},
		BundleName:  "approved_certificates_20240315_120000.zip",
	}

	w := postApproved(t, newTestRouter(&stubService{result: result}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Documents   int      `json:"documents"`
		RowErrors   []string `json:"row_errors"`
		Diagnostics []string `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Documents)
	assert.Empty(t, resp.RowErrors)
	assert.Contains(t, resp.Diagnostics, "no eligible records")
}
