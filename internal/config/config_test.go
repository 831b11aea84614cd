package config_test

import (
	"testing"

	"github.com/victorious243/scalper/internal/config"
)

func TestValidateRejectsOutOfBandRiskPerTrade(t *testing.T) {
	cfg := config.Default()
	cfg.Symbols = []config.SymbolConfig{{Symbol: "EURUSD", RiskPerTrade: 0.02}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for risk_per_trade outside [0.0025, 0.01]")
	}
}

func TestValidateRejectsEmptySymbols(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error with no symbols configured")
	}
}

func TestValidateRequiresAcknowledgementForLiveTrading(t *testing.T) {
	cfg := config.Default()
	cfg.PaperTrading = false
	cfg.LiveEnabled = true
	cfg.Symbols = []config.SymbolConfig{{Symbol: "EURUSD", RiskPerTrade: 0.005}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for live trading without acknowledgement")
	}
	cfg.LiveAcknowledgement = "I_UNDERSTAND"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error with acknowledgement set: %v", err)
	}
}

func TestSymbolByNameFindsConfiguredSymbol(t *testing.T) {
	cfg := config.Default()
	cfg.Symbols = []config.SymbolConfig{{Symbol: "EURUSD"}}
	if _, ok := cfg.SymbolByName("EURUSD"); !ok {
		t.Error("expected EURUSD to be found")
	}
	if _, ok := cfg.SymbolByName("GBPUSD"); ok {
		t.Error("expected GBPUSD to be absent")
	}
}
