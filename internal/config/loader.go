package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads a TOML bot configuration from path and overlays it on
// Default(), following the same "missing key keeps default" semantics as
// the Python reference loader's `raw.get(key, default)` calls.
func Load(path string) (BotConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return BotConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if v.IsSet("default_timezone") {
		cfg.DefaultTimezone = v.GetString("default_timezone")
	}
	if v.IsSet("paper_trading") {
		cfg.PaperTrading = v.GetBool("paper_trading")
	}
	cfg.DryRun = v.GetBool("dry_run")
	cfg.LiveEnabled = v.GetBool("live_enabled")
	cfg.LiveAcknowledgement = v.GetString("live_acknowledgement")
	cfg.EnableSupplyDemand = v.GetBool("enable_supply_demand")
	cfg.SupplyDemandConfigPath = v.GetString("supply_demand_config_path")
	cfg.EnableScalper = v.GetBool("enable_scalper")
	cfg.ScalperOnly = v.GetBool("scalper_only")
	cfg.AllowMixedRegime = v.GetBool("allow_mixed_regime")
	if v.IsSet("max_positions_per_symbol") {
		cfg.MaxPositionsPerSymbol = v.GetInt("max_positions_per_symbol")
	}
	if v.IsSet("max_daily_trades") {
		cfg.MaxDailyTrades = v.GetInt("max_daily_trades")
	}
	if v.IsSet("max_daily_loss") {
		cfg.MaxDailyLoss = v.GetFloat64("max_daily_loss")
	}
	if v.IsSet("max_consecutive_losses") {
		cfg.MaxConsecutiveLosses = v.GetInt("max_consecutive_losses")
	}
	if v.IsSet("slippage_points") {
		cfg.SlippagePoints = v.GetFloat64("slippage_points")
	}
	if v.IsSet("spread_filter_multiplier") {
		cfg.SpreadFilterMultiplier = v.GetFloat64("spread_filter_multiplier")
	}
	if v.IsSet("news_risk_window_minutes") {
		cfg.NewsRiskWindowMinutes = v.GetInt("news_risk_window_minutes")
	}
	if v.IsSet("news_window_pre_minutes") {
		cfg.NewsWindowPreMinutes = v.GetInt("news_window_pre_minutes")
	}
	if v.IsSet("news_window_post_minutes") {
		cfg.NewsWindowPostMinutes = v.GetInt("news_window_post_minutes")
	}
	cfg.NewsSchedulePath = v.GetString("news_schedule_path")
	if v.IsSet("trade_cooldown_minutes") {
		cfg.TradeCooldownMinutes = v.GetInt("trade_cooldown_minutes")
	}
	if v.IsSet("drawdown_kill_switch") {
		cfg.DrawdownKillSwitch = v.GetFloat64("drawdown_kill_switch")
	}
	cfg.CloseOnGoodProfit = v.GetBool("close_on_good_profit")
	if v.IsSet("good_profit_rr") {
		cfg.GoodProfitRR = v.GetFloat64("good_profit_rr")
	}

	rawSessions, _ := v.Get("sessions").([]interface{})
	for _, raw := range rawSessions {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		cfg.Sessions = append(cfg.Sessions, SessionConfig{
			Name:  fmt.Sprint(m["name"]),
			Start: fmt.Sprint(m["start"]),
			End:   fmt.Sprint(m["end"]),
		})
	}

	rawSymbols, _ := v.Get("symbols").([]interface{})
	for _, raw := range rawSymbols {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		sc := SymbolConfig{
			Symbol:                     fmt.Sprint(m["symbol"]),
			SpreadMode:                 stringOr(m, "spread_mode", "pips"),
			MaxSpread:                  floatOf(m["max_spread"]),
			MinSpreadChecks:            intOr(m, "min_spread_checks", 3),
			SpreadSpikeCooldownMinutes: intOr(m, "spread_spike_cooldown_minutes", 15),
			MinATR:                     floatOf(m["min_atr"]),
			MaxATR:                     floatOf(m["max_atr"]),
			MinStopATR:                 floatOrDefault(m, "min_stop_atr", 0.5),
			MinRegimeConfidence:        floatOrDefault(m, "min_regime_confidence", 0.5),
			RiskPerTrade:               floatOf(m["risk_per_trade"]),
			MaxDailyLoss:               floatOf(m["max_daily_loss"]),
			MaxTradesPerDay:            intOf(m["max_trades_per_day"]),
			MaxConsecutiveLosses:       intOf(m["max_consecutive_losses"]),
			MinRR:                      floatOf(m["min_rr"]),
			NewsSensitivity:            stringOr(m, "news_sensitivity", "high"),
		}
		if lso, ok := m["lot_step_override"]; ok {
			f := floatOf(lso)
			sc.LotStepOverride = &f
		}
		if mlo, ok := m["min_lot_override"]; ok {
			f := floatOf(mlo)
			sc.MinLotOverride = &f
		}
		if tcm, ok := m["trade_cooldown_minutes"]; ok {
			i := int(floatOf(tcm))
			sc.TradeCooldownMinutes = &i
		}
		cfg.Symbols = append(cfg.Symbols, sc)
	}

	return cfg, nil
}

func floatOf(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

func floatOrDefault(m map[string]interface{}, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return floatOf(v)
	}
	return def
}

func intOf(v interface{}) int {
	return int(floatOf(v))
}

func intOr(m map[string]interface{}, key string, def int) int {
	if v, ok := m[key]; ok {
		return intOf(v)
	}
	return def
}

func stringOr(m map[string]interface{}, key, def string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprint(v)
	}
	return def
}
