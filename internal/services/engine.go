package services

import (
	"fmt"
	"math"

	"pointplay-backend/internal/models"
)

// RandomSource returns uniform floats in [0, 1).
type RandomSource func() float64

func draw(rng RandomSource, n int) int {
	idx := int(math.Floor(rng() * float64(n)))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// parseBet applies the shared bet rules: an integer, strictly positive and
// covered by balance.
func parseBet(raw string, balance int64, surface models.Surface) (int64, error) {
	bet, ok := models.ParseLeadingInt(raw)
	if !ok || bet <= 0 {
		return 0, models.Reject(models.ErrValidation, surface, models.MsgInvalidBet)
	}
	if bet > balance {
		return 0, models.Reject(models.ErrInsufficientFunds, surface, models.MsgInsufficientBet)
	}
	return bet, nil
}

// checkPayoutRoom refuses a bet whose win would lift the balance past
// models.MaxBalance.
func checkPayoutRoom(bet, balance, payout int64, surface models.Surface) error {
	if bet > models.BalanceRoom(balance)/(payout-1) {
		return models.Reject(models.ErrValidation, surface, models.MsgBetTooLarge)
	}
	return nil
}

// PlayCoinFlip settles a coin flip wager. The bet is debited before the
// outcome is drawn and a win credits twice the bet.
func PlayCoinFlip(rawBet string, chosen models.CoinSide, balance int64, rng RandomSource) (*models.CoinFlipOutcome, error) {
	if chosen == models.SideNone {
		return nil, models.Reject(models.ErrValidation, models.SurfaceCoin, models.MsgSelectSide)
	}
	if chosen != models.SideHeads && chosen != models.SideTails {
		return nil, models.Reject(models.ErrValidation, models.SurfaceCoin, models.MsgInvalidCoinSide)
	}

	bet, err := parseBet(rawBet, balance, models.SurfaceCoin)
	if err != nil {
		return nil, err
	}
	if err := checkPayoutRoom(bet, balance, models.CoinFlipPayout, models.SurfaceCoin); err != nil {
		return nil, err
	}

	newBalance := balance - bet
	result := models.CoinSides[draw(rng, len(models.CoinSides))]

	out := &models.CoinFlipOutcome{
		Game:    models.GameTypeCoinFlip,
		Bet:     bet,
		Chosen:  chosen,
		Outcome: result,
	}

	message := fmt.Sprintf("Coin shows %s. ", result.Upper())
	activity := fmt.Sprintf("Coin Flip: bet %d, result %s", bet, result.Upper())

	if result == chosen {
		out.Win = true
		out.Payout = bet * models.CoinFlipPayout
		newBalance += out.Payout
		message += fmt.Sprintf("You won %d points! 🎉", out.Payout)
		activity += fmt.Sprintf(" — WON %d", out.Payout)
	} else {
		message += fmt.Sprintf("You lost %d points. 😢", bet)
		activity += fmt.Sprintf(" — LOST %d", bet)
	}

	out.NewBalance = newBalance
	out.Delta = newBalance - balance
	out.Message = message
	out.Activity = activity
	return out, nil
}

// ParseDicePick validates the chosen die face.
func ParseDicePick(raw string) (int, error) {
	n, ok := models.ParseLeadingInt(raw)
	if !ok || n < 1 || n > models.DiceFaces {
		return 0, models.Reject(models.ErrValidation, models.SurfaceDice, models.MsgInvalidDicePick)
	}
	return int(n), nil
}

// PlayDiceRoll settles a dice wager. An exact match pays six times the bet.
func PlayDiceRoll(rawBet, rawPick string, balance int64, rng RandomSource) (*models.DiceRollOutcome, error) {
	bet, ok := models.ParseLeadingInt(rawBet)
	if !ok || bet <= 0 {
		return nil, models.Reject(models.ErrValidation, models.SurfaceDice, models.MsgInvalidBet)
	}

	picked, err := ParseDicePick(rawPick)
	if err != nil {
		return nil, err
	}

	if bet > balance {
		return nil, models.Reject(models.ErrInsufficientFunds, models.SurfaceDice, models.MsgInsufficientBet)
	}
	if err := checkPayoutRoom(bet, balance, models.DiceRollPayout, models.SurfaceDice); err != nil {
		return nil, err
	}

	newBalance := balance - bet
	rolled := draw(rng, models.DiceFaces) + 1

	out := &models.DiceRollOutcome{
		Game:   models.GameTypeDice,
		Bet:    bet,
		Picked: picked,
		Rolled: rolled,
	}

	message := fmt.Sprintf("Dice shows %d. ", rolled)
	activity := fmt.Sprintf("Dice Roll: bet %d, picked %d, rolled %d", bet, picked, rolled)

	if rolled == picked {
		out.Win = true
		out.Payout = bet * models.DiceRollPayout
		newBalance += out.Payout
		message += fmt.Sprintf("You picked %d and WON %d points! 🎉", picked, out.Payout)
		activity += fmt.Sprintf(" — WON %d", out.Payout)
	} else {
		message += fmt.Sprintf("You picked %d and lost %d points. 😢", picked, bet)
		activity += fmt.Sprintf(" — LOST %d", bet)
	}

	out.NewBalance = newBalance
	out.Delta = newBalance - balance
	out.Message = message
	out.Activity = activity
	return out, nil
}
