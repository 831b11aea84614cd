package risk

// Reason codes for risk-gate rejections, matching the taxonomy in the
// core's error handling design.
const (
	ReasonKillSwitch             = "kill_switch"
	ReasonOutsideSession         = "outside_session"
	ReasonLowRegimeConfidence    = "low_regime_confidence"
	ReasonRRTooLow               = "rr_too_low"
	ReasonCooldownActive         = "cooldown_active"
	ReasonMarketClosed           = "market_closed"
	ReasonSpreadSpikeCooldown    = "spread_spike_cooldown"
	ReasonSpreadTooWide          = "spread_too_wide"
	ReasonVolatilityTooLow       = "volatility_too_low"
	ReasonVolatilityTooHigh      = "volatility_too_high"
	ReasonMaxTradesReached       = "max_trades_reached"
	ReasonMaxConsecutiveLosses   = "max_consecutive_losses"
	ReasonGlobalMaxTrades        = "global_max_trades"
	ReasonGlobalConsecutiveLoss  = "global_consecutive_losses"
	ReasonInsufficientMargin     = "insufficient_margin"
	ReasonDailyLossLimit         = "daily_loss_limit"
	ReasonGlobalDailyLoss        = "global_daily_loss"
	ReasonDrawdownKillSwitch     = "drawdown_kill_switch"
	ReasonStopTooClose           = "stop_too_close"
	ReasonTPTooClose             = "tp_too_close"
	ReasonFreezeLevel            = "freeze_level"
	ReasonInvalidStopDistance    = "invalid_stop_distance"
	ReasonStopTooTightATR        = "stop_too_tight_atr"
	ReasonVolumeBelowMin         = "volume_below_min"
	ReasonApproved               = "approved"
	ReasonApprovedAdjustment     = "approved_adjustment"
)

var reasonText = map[string]string{
	ReasonKillSwitch:            "Kill switch active",
	ReasonOutsideSession:        "Outside allowed sessions",
	ReasonLowRegimeConfidence:   "Regime confidence too low or mixed",
	ReasonRRTooLow:              "Risk-reward below minimum",
	ReasonCooldownActive:        "Cooldown active after recent trade",
	ReasonSpreadSpikeCooldown:   "Spread spike cooldown active",
	ReasonSpreadTooWide:         "Spread too wide",
	ReasonVolatilityTooLow:      "Volatility below minimum",
	ReasonVolatilityTooHigh:     "Volatility above maximum",
	ReasonMaxTradesReached:      "Max trades per symbol reached",
	ReasonMaxConsecutiveLosses:  "Max consecutive losses per symbol reached",
	ReasonGlobalMaxTrades:       "Max trades per day reached",
	ReasonGlobalConsecutiveLoss: "Max consecutive losses reached",
	ReasonGlobalDailyLoss:       "Global daily loss limit reached",
	ReasonInsufficientMargin:    "Insufficient margin",
	ReasonDailyLossLimit:        "Daily loss limit reached",
	ReasonDrawdownKillSwitch:    "Drawdown kill switch triggered",
	ReasonMarketClosed:          "Market closed or symbol not tradable",
	ReasonStopTooClose:          "Stop loss too close",
	ReasonTPTooClose:            "Take profit too close",
	ReasonFreezeLevel:           "Freeze level constraint",
	ReasonInvalidStopDistance:   "Invalid stop distance",
	ReasonStopTooTightATR:       "Stop loss too tight vs ATR",
	ReasonVolumeBelowMin:        "Calculated volume below broker minimum",
}

// ReasonText maps a machine reason code to its human-readable form,
// returning the code itself if unrecognized.
func ReasonText(code string) string {
	if text, ok := reasonText[code]; ok {
		return text
	}
	return code
}
