package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"

	"pointplay-backend/internal/models"
)

// FairSource derives every draw from HMAC-SHA256(serverSeed, clientSeed:nonce)
// so a player can recompute outcomes once the server seed is revealed.
type FairSource struct {
	serverSeed     string
	clientSeed     string
	nonce          int64
	previousSeed   string
	generateSeedFn func() (string, error)
}

func NewFairSource(clientSeed string) (*FairSource, error) {
	seed, err := models.GenerateServerSeed()
	if err != nil {
		return nil, err
	}
	return &FairSource{
		serverSeed:     seed,
		clientSeed:     clientSeed,
		generateSeedFn: models.GenerateServerSeed,
	}, nil
}

// NewFairSourceWithSeed is used when the server seed must be fixed, e.g. in tests.
func NewFairSourceWithSeed(serverSeed, clientSeed string) *FairSource {
	return &FairSource{
		serverSeed:     serverSeed,
		clientSeed:     clientSeed,
		generateSeedFn: models.GenerateServerSeed,
	}
}

func hashDraw(serverSeed, clientSeed string, nonce int64) string {
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(fmt.Sprintf("%s:%d", clientSeed, nonce)))
	return hex.EncodeToString(h.Sum(nil))
}

// hashToFloat uses the first 52 bits (13 hex chars) of the hash.
func hashToFloat(hash string) float64 {
	n := new(big.Int)
	n.SetString(hash[:13], 16)
	return float64(n.Int64()) / math.Pow(2, 52)
}

// Next returns the float for the current nonce and advances it.
func (f *FairSource) Next() float64 {
	v := hashToFloat(hashDraw(f.serverSeed, f.clientSeed, f.nonce))
	f.nonce++
	return v
}

func (f *FairSource) ServerHash() string {
	hash := sha256.Sum256([]byte(f.serverSeed))
	return hex.EncodeToString(hash[:])
}

// Rotate reveals the current server seed and starts a fresh one at nonce 0.
func (f *FairSource) Rotate() (string, error) {
	seed, err := f.generateSeedFn()
	if err != nil {
		return "", err
	}
	f.previousSeed = f.serverSeed
	f.serverSeed = seed
	f.nonce = 0
	return f.previousSeed, nil
}

func (f *FairSource) Data() models.FairnessData {
	return models.FairnessData{
		ServerSeedHash:     f.ServerHash(),
		ClientSeed:         f.clientSeed,
		Nonce:              f.nonce,
		PreviousServerSeed: f.previousSeed,
	}
}

// VerifyDraw recomputes one draw and the game results it maps to.
func VerifyDraw(serverSeed, clientSeed string, nonce int64) (*models.VerifyResult, error) {
	if serverSeed == "" || clientSeed == "" {
		return nil, fmt.Errorf("server seed and client seed are required")
	}
	if nonce < 0 {
		return nil, fmt.Errorf("nonce must not be negative")
	}

	hash := hashDraw(serverSeed, clientSeed, nonce)
	v := hashToFloat(hash)
	fixed := func() float64 { return v }

	return &models.VerifyResult{
		Hash:     hash,
		Float:    v,
		CoinSide: models.CoinSides[draw(fixed, len(models.CoinSides))],
		DieFace:  draw(fixed, models.DiceFaces) + 1,
	}, nil
}
