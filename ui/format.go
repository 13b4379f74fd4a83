package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/pthm-cable/poopdodge/wallet"
)

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatRunTime renders a run length such as "1 minute 12 seconds".
func FormatRunTime(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).String()
}

// FormatSOL renders a SOL balance with four decimals.
func FormatSOL(sol float64) string {
	return humanize.FormatFloat("#,###.####", sol) + " SOL"
}

// FormatTokens renders a token amount with its symbol.
func FormatTokens(amount float64, symbol string) string {
	return humanize.FormatFloat("#,###.##", amount) + " " + symbol
}

// RewardLine is the game-over line advertising the claimable reward.
func RewardLine(tokens int, symbol string) string {
	if tokens <= 0 {
		return fmt.Sprintf("Collect 10 coins to earn %s", symbol)
	}
	return fmt.Sprintf("Reward: %s %s", FormatCount(tokens), symbol)
}

// WalletLines describes the wallet state in one or two lines.
func WalletLines(st wallet.State, symbol string) []string {
	switch {
	case st.Connecting:
		return []string{"Connecting wallet..."}
	case !st.Connected:
		return []string{"Wallet not connected"}
	}
	lines := []string{"Wallet " + wallet.ShortAddress(st.Address)}
	bal := FormatSOL(st.Balance)
	if st.TokenReady {
		bal += "  |  " + FormatTokens(st.TokenBalance, symbol)
	}
	return append(lines, bal)
}

// ClaimLabel is the caption of the claim button.
func ClaimLabel(claiming, claimed bool, tokens int, symbol string) string {
	switch {
	case claiming:
		return "Claiming..."
	case claimed:
		return "Claimed!"
	}
	return fmt.Sprintf("Claim %d %s", tokens, symbol)
}
