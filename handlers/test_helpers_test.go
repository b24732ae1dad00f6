package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"zynex_site_go/config"
	"zynex_site_go/models"
	"zynex_site_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSchedulingURL = "https://calendly.com/zynexsolutions/30min"

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(&models.ContactSubmission{})
	assert.NoError(t, err)

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", &config.Config{
		Environment:   "test",
		SchedulingURL: testSchedulingURL,
		EmailTestMode: true,
	})

	return e, c, rec
}

// stubVerifier answers siteverify with a fixed JSON body
type stubVerifier struct {
	body   string
	err    error
	tokens []string
}

func (s *stubVerifier) Verify(ctx context.Context, secret, token string) (*services.SiteVerifyResponse, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	var r services.SiteVerifyResponse
	if err := json.Unmarshal([]byte(s.body), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func newTestConsultationHandler(secret string, sv services.SiteVerifier) *ConsultationHandler {
	metrics := services.NewVerificationMetrics(prometheus.NewRegistry())
	return NewConsultationHandler(services.NewConsultationVerifier(secret, sv, metrics), testSchedulingURL)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
