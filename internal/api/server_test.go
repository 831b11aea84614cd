package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/victorious243/scalper/internal/api"
	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/risk"
	"github.com/victorious243/scalper/internal/tradebook"
)

func testServer(t *testing.T) *api.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	adapter := broker.NewPaper(decimal.NewFromFloat(10000))
	riskManager := risk.New(logger, config.Default(), adapter, nil)
	return api.NewServer(logger, api.DefaultConfig(), riskManager, tradebook.New(), adapter)
}

func TestHealthHandlerReportsBrokerConnectivity(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if body["broker_up"] != true {
		t.Errorf("broker_up = %v, want true", body["broker_up"])
	}
}

func TestRiskStatsHandlerReturnsSymbolMap(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/risk/stats", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := body["symbols"].(map[string]interface{}); !ok {
		t.Errorf("symbols = %v, want a JSON object", body["symbols"])
	}
}
