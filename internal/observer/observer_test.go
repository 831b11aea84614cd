package observer_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/observer"
)

func TestInSessionsClassification(t *testing.T) {
	sessions := []config.SessionConfig{
		{Name: "LONDON", Start: "07:00", End: "11:30"},
		{Name: "NY_OVERLAP", Start: "12:30", End: "16:00"},
	}

	cases := []struct {
		utc  string
		want string
	}{
		{"2026-01-28T08:00:00Z", "LONDON"},
		{"2026-01-28T12:00:00Z", "OFF"},
		{"2026-01-28T13:00:00Z", "NY_OVERLAP"},
	}

	for _, tc := range cases {
		ts, err := time.Parse(time.RFC3339, tc.utc)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.utc, err)
		}
		got := observer.InSessions(ts, sessions, "Europe/Dublin")
		if got != tc.want {
			t.Errorf("InSessions(%s) = %s, want %s", tc.utc, got, tc.want)
		}
	}
}

func TestInSessionsCrossesMidnight(t *testing.T) {
	sessions := []config.SessionConfig{
		{Name: "ASIA", Start: "22:00", End: "06:00"},
	}
	ts, _ := time.Parse(time.RFC3339, "2026-01-28T23:30:00Z")
	got := observer.InSessions(ts, sessions, "UTC")
	if got != "ASIA" {
		t.Errorf("InSessions crossing midnight = %s, want ASIA", got)
	}
}

func TestEvaluateDefaultsToRangeLowVol(t *testing.T) {
	obs := observer.New(zap.NewNop(), nil, "UTC")
	state := obs.Evaluate("EURUSD", nil, nil, time.Now())
	if state.RegimePrimary != "RANGE" {
		t.Errorf("RegimePrimary = %s, want RANGE", state.RegimePrimary)
	}
	if state.RegimeSecondary != "LOW_VOL" {
		t.Errorf("RegimeSecondary = %s, want LOW_VOL", state.RegimeSecondary)
	}
	if state.Session != "OFF" {
		t.Errorf("Session = %s, want OFF", state.Session)
	}
}
