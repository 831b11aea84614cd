package news_test

import (
	"testing"
	"time"

	"github.com/victorious243/scalper/internal/news"
)

func TestNormalizeSymbolMetalsIsIdentity(t *testing.T) {
	if got := news.NormalizeSymbol("XAUUSD"); got != "XAUUSD" {
		t.Errorf("NormalizeSymbol(XAUUSD) = %s, want XAUUSD", got)
	}
	if got := news.NormalizeSymbol("XAGUSD"); got != "XAGUSD" {
		t.Errorf("NormalizeSymbol(XAGUSD) = %s, want XAGUSD", got)
	}
}

func TestNormalizeSymbolStripsNonLetters(t *testing.T) {
	if got := news.NormalizeSymbol("EUR/USD"); got != "EURUSD" {
		t.Errorf("NormalizeSymbol(EUR/USD) = %s, want EURUSD", got)
	}
}

func TestInRiskWindowNoEventsIsFalse(t *testing.T) {
	f := news.NewFilter(15, 15)
	if f.InRiskWindow(time.Now(), "EURUSD", "high") {
		t.Error("expected no risk window with no loaded schedule")
	}
}
