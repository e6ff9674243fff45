package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/internal/repository/memory"
	"github.com/beautysoda/quoteapi/internal/service"
	"github.com/beautysoda/quoteapi/internal/sheets"
)

const operatorKey = "ops-test-key"

type testServer struct {
	router  *gin.Engine
	repos   *repository.Repositories
	hits    *atomic.Int32
	respond *atomic.Value
}

// newTestServer wires the real services against a fake sheets endpoint.
// The endpoint answers with whatever body/status is stored in respond.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hits := &atomic.Int32{}
	respond := &atomic.Value{}
	respond.Store(http.StatusOK)
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		status := respond.Load().(int)
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(`{"status":"success","message":"saved"}`))
		}
	}))
	t.Cleanup(endpoint.Close)

	cfg, err := config.FromMap(map[string]string{
		"SHEETS_ENDPOINT":    endpoint.URL,
		"ENVIRONMENT":        "test",
		"SUBMIT_RETRY_DELAY": "1ms",
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	repos := memory.NewRepositories()

	hash, err := bcrypt.GenerateFromPassword([]byte(operatorKey), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repos.Operator.Create(context.Background(), &domain.Operator{
		Name: "ops", APIKeyHash: string(hash), IsActive: true,
	}))

	client := sheets.NewClientWithHTTP(cfg.Sheets.Endpoint, endpoint.Client(), logger)
	pipeline, err := service.NewSubmissionPipeline(client, service.PipelineConfigFrom(cfg), logger)
	require.NoError(t, err)

	router := NewRouter(cfg, Services{
		Quotes:      service.NewQuoteService(pipeline, repos, logger),
		Catalog:     service.NewCatalogService(cfg.Company),
		Diagnostics: service.NewDiagnosticsService(pipeline, cfg.Sheets.Endpoint, logger),
	}, repos, logger)

	return &testServer{router: router, repos: repos, hits: hits, respond: respond}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func quoteBody() map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{
			"customerType":   "company",
			"companyName":    "蘇打美學有限公司",
			"taxId":          "12345678",
			"companyAddress": "台北市大同區南京西路288號",
			"contactName":    "王小明",
			"phone":          "02-2558-5880",
			"email":          "owner@shop.tw",
			"invoiceEmail":   "billing@shop.tw",
		},
		"selection": map[string]interface{}{
			"selectedPlan":     "plan2",
			"addons":           []string{"addon1"},
			"multiStore":       true,
			"additionalStores": 2,
		},
		"authorization": map[string]interface{}{
			"stampMethod": "contact",
			"agreeTerms":  true,
		},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/v1/catalog", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	plans := body["plans"].([]interface{})
	require.Len(t, plans, 4)
	first := plans[0].(map[string]interface{})
	assert.Equal(t, "plan1", first["id"])
	assert.Equal(t, "NT$ 999", first["formattedPrice"])
	assert.Len(t, body["addons"], 3)
}

func TestPreviewPrice(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/quotes/price", map[string]interface{}{
		"selectedPlan":     "plan2",
		"addons":           []string{"addon1"},
		"multiStore":       true,
		"additionalStores": 2,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 23500, body["totalPrice"])
	assert.EqualValues(t, 3, body["totalStores"])
	assert.Equal(t, "NT$ 23,500", body["formattedTotal"])

	w = s.do(t, http.MethodPost, "/v1/quotes/price", map[string]interface{}{"selectedPlan": "plan9"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitQuoteSuccess(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/quotes", quoteBody(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "QUERY", body["transport"])
	assert.Equal(t, "SUCCEEDED", body["state"])
	assert.EqualValues(t, 1, body["attempts"])
	assert.EqualValues(t, 1, s.hits.Load())

	id := body["submission_id"].(string)
	w = s.do(t, http.MethodGet, "/v1/admin/submissions/"+id, nil, operatorKey)
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode(t, w)
	assert.Equal(t, "SUCCEEDED", sub["state"])
	assert.EqualValues(t, 23500, sub["total_price"])
	assert.Len(t, sub["events"], 2)
}

func TestSubmitQuoteFormErrors(t *testing.T) {
	s := newTestServer(t)

	body := quoteBody()
	body["customer"].(map[string]interface{})["taxId"] = "1234567"
	w := s.do(t, http.MethodPost, "/v1/quotes", body, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Contains(t, resp["fields"], "taxId")
	assert.EqualValues(t, 0, s.hits.Load())

	body = quoteBody()
	body["selection"].(map[string]interface{})["selectedPlan"] = "plan9"
	w = s.do(t, http.MethodPost, "/v1/quotes", body, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitQuoteExhausted(t *testing.T) {
	s := newTestServer(t)
	s.respond.Store(http.StatusInternalServerError)

	w := s.do(t, http.MethodPost, "/v1/quotes", quoteBody(), "")
	require.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "EXHAUSTED", body["state"])
	assert.EqualValues(t, 3, body["attempts"])
	assert.EqualValues(t, 3, s.hits.Load())

	w = s.do(t, http.MethodGet, "/v1/admin/submissions?state=EXHAUSTED", nil, operatorKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["submissions"], 1)
}

func TestAdminRequiresOperatorKey(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/admin/submissions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/submissions", nil, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/submissions?state=BOGUS", nil, operatorKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/submissions/not-a-uuid", nil, operatorKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiagnosticsEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/admin/diagnostics?format=text", nil, operatorKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "表單後端診斷報告"))

	w = s.do(t, http.MethodPost, "/v1/admin/diagnostics/test-submit", nil, operatorKey)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)
	assert.Len(t, report["checks"], 4)
	assert.Equal(t, true, report["test_submit"].(map[string]interface{})["success"])
}
