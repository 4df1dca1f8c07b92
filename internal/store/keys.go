package store

import (
	"fmt"
	"time"
)

const (
	KeyBalance   = "profile:%s:pp_balance"
	KeyUsername  = "profile:%s:pp_username"
	KeyRateLimit = "ratelimit:%s:%s"

	TTLRateLimitFloor = time.Second
)

func BalanceKey(profileID string) string {
	return fmt.Sprintf(KeyBalance, profileID)
}

func UsernameKey(profileID string) string {
	return fmt.Sprintf(KeyUsername, profileID)
}

func RateLimitKey(subject, action string) string {
	return fmt.Sprintf(KeyRateLimit, subject, action)
}
