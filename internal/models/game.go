package models

import (
	"fmt"
	"strings"
)

const (
	StartBalance     int64 = 1000
	BonusAmount      int64 = 100
	CoinFlipPayout   int64 = 2
	DiceRollPayout   int64 = 6
	DiceFaces              = 6
	ActivityCapacity       = 8

	DefaultUsername = "Guest"
)

// MaxBalance is the largest balance a session may hold. It is the largest
// integer a browser client can represent exactly; writes and loads share it.
const MaxBalance int64 = 1<<53 - 1

// BalanceRoom reports how many points can still be credited to balance.
func BalanceRoom(balance int64) int64 {
	if balance >= MaxBalance {
		return 0
	}
	return MaxBalance - balance
}

type CoinSide string

const (
	SideNone  CoinSide = ""
	SideHeads CoinSide = "heads"
	SideTails CoinSide = "tails"
)

// CoinSides is the draw order used when mapping a random float to a side.
var CoinSides = [2]CoinSide{SideHeads, SideTails}

func ParseCoinSide(raw string) (CoinSide, error) {
	switch side := CoinSide(strings.ToLower(strings.TrimSpace(raw))); side {
	case SideHeads, SideTails:
		return side, nil
	default:
		return SideNone, fmt.Errorf("invalid coin side: %q", raw)
	}
}

func (s CoinSide) Upper() string {
	return strings.ToUpper(string(s))
}

type GameType string

const (
	GameTypeCoinFlip GameType = "coinflip"
	GameTypeDice     GameType = "dice"
)

// CoinFlipOutcome is the settled result of an accepted coin flip wager.
type CoinFlipOutcome struct {
	Game       GameType `json:"game"`
	Bet        int64    `json:"bet"`
	Chosen     CoinSide `json:"chosen"`
	Outcome    CoinSide `json:"outcome"`
	Win        bool     `json:"win"`
	Payout     int64    `json:"payout"`
	Delta      int64    `json:"delta"`
	NewBalance int64    `json:"new_balance"`
	Message    string   `json:"message"`
	Activity   string   `json:"activity"`
}

// DiceRollOutcome is the settled result of an accepted dice wager.
type DiceRollOutcome struct {
	Game       GameType `json:"game"`
	Bet        int64    `json:"bet"`
	Picked     int      `json:"picked"`
	Rolled     int      `json:"rolled"`
	Win        bool     `json:"win"`
	Payout     int64    `json:"payout"`
	Delta      int64    `json:"delta"`
	NewBalance int64    `json:"new_balance"`
	Message    string   `json:"message"`
	Activity   string   `json:"activity"`
}
