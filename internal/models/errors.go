package models

import "errors"

// ErrValidation is returned for bad or missing user input.
var ErrValidation = errors.New("validation error")

// ErrInsufficientFunds is returned when a bet exceeds the current balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Surface names the message area a rejection is shown on.
type Surface string

const (
	SurfaceCoin     Surface = "coin"
	SurfaceDice     Surface = "dice"
	SurfaceUsername Surface = "username"
)

const (
	MsgSelectSide      = "Select Heads or Tails first."
	MsgInvalidBet      = "Enter a valid bet amount."
	MsgInsufficientBet = "You don't have enough points for that bet."
	MsgInvalidDicePick = "Pick a number between 1 and 6."
	MsgInvalidUsername = "Please enter a valid username."
	MsgInvalidCoinSide = "Choose heads or tails."
	MsgBetTooLarge     = "That bet could take your balance past the maximum."
	MsgBalanceAtMax    = "Your balance is already at the maximum."
)

// Rejection is a recoverable refusal of a user action. No state is mutated
// when one is returned.
type Rejection struct {
	Kind    error
	Surface Surface
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

// KindName is the wire name of the rejection class.
func (r *Rejection) KindName() string {
	if errors.Is(r.Kind, ErrInsufficientFunds) {
		return "insufficient_funds"
	}
	return "validation"
}

func Reject(kind error, surface Surface, message string) *Rejection {
	return &Rejection{Kind: kind, Surface: surface, Message: message}
}

// AsRejection reports whether err is a Rejection and returns it.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
