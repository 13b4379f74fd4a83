package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/poopdodge/wallet"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name, got, want string
	}{
		{"count", FormatCount(1234567), "1,234,567"},
		{"small count", FormatCount(7), "7"},
		{"run time", FormatRunTime(72*time.Second + 300*time.Millisecond), "1 minute 12 seconds"},
		{"short run", FormatRunTime(200 * time.Millisecond), "0 seconds"},
		{"reward", RewardLine(3, "$POOP"), "Reward: 3 $POOP"},
		{"no reward", RewardLine(0, "$POOP"), "Collect 10 coins to earn $POOP"},
		{"claim", ClaimLabel(false, false, 2, "$POOP"), "Claim 2 $POOP"},
		{"claiming", ClaimLabel(true, false, 2, "$POOP"), "Claiming..."},
		{"claimed", ClaimLabel(false, true, 2, "$POOP"), "Claimed!"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestWalletLines(t *testing.T) {
	if got := WalletLines(wallet.State{}, "$POOP"); len(got) != 1 || got[0] != "Wallet not connected" {
		t.Errorf("disconnected = %q", got)
	}
	if got := WalletLines(wallet.State{Connecting: true}, "$POOP"); got[0] != "Connecting wallet..." {
		t.Errorf("connecting = %q", got)
	}

	st := wallet.State{
		Address:      "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		Connected:    true,
		Balance:      1.5,
		TokenBalance: 12,
		TokenReady:   true,
	}
	got := WalletLines(st, "$POOP")
	if len(got) != 2 || got[0] != "Wallet 9xQe...VFin" {
		t.Fatalf("connected = %q", got)
	}
	if !strings.Contains(got[1], "SOL") || !strings.Contains(got[1], "$POOP") {
		t.Errorf("balance line = %q", got[1])
	}

	st.TokenReady = false
	if got := WalletLines(st, "$POOP"); strings.Contains(got[1], "$POOP") {
		t.Errorf("token balance shown without a token: %q", got[1])
	}
}
