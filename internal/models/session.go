package models

import "time"

// SessionSnapshot is a point-in-time copy of everything a client renders.
type SessionSnapshot struct {
	ProfileID    string    `json:"profile_id"`
	SessionID    string    `json:"session_id"`
	Username     string    `json:"username"`
	Balance      int64     `json:"balance"`
	SelectedSide CoinSide  `json:"selected_side"`
	BonusClaimed bool      `json:"bonus_claimed"`
	CoinMessage  string    `json:"coin_message"`
	DiceMessage  string    `json:"dice_message"`
	Activity     []string  `json:"activity"`
	StartedAt    time.Time `json:"started_at"`
}

type BonusResult struct {
	Claimed    bool   `json:"claimed"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
	Message    string `json:"message,omitempty"`
}

type ResetResult struct {
	NewBalance         int64  `json:"new_balance"`
	Message            string `json:"message"`
	PreviousServerSeed string `json:"previous_server_seed"`
}

// FairnessData lets a client audit the draws of its session.
type FairnessData struct {
	ServerSeedHash     string `json:"server_seed_hash"`
	ClientSeed         string `json:"client_seed"`
	Nonce              int64  `json:"nonce"`
	PreviousServerSeed string `json:"previous_server_seed,omitempty"`
}

type VerifyResult struct {
	Hash     string   `json:"hash"`
	Float    float64  `json:"float"`
	CoinSide CoinSide `json:"coin_side"`
	DieFace  int      `json:"die_face"`
}

type StartSessionRequest struct {
	ProfileID string `json:"profile_id"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type CoinChoiceRequest struct {
	Side string `json:"side" binding:"required"`
}

type CoinFlipRequest struct {
	Bet RawAmount `json:"bet"`
}

type DiceRollRequest struct {
	Bet    RawAmount `json:"bet"`
	Number RawAmount `json:"number"`
}

type VerifyRequest struct {
	ServerSeed string `json:"server_seed" binding:"required"`
	ClientSeed string `json:"client_seed" binding:"required"`
	Nonce      int64  `json:"nonce" binding:"min=0"`
}
