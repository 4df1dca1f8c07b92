package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointplay-backend/internal/services"
)

func TestActivityRecorderKeepsNewestEight(t *testing.T) {
	clock := time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)
	r := services.NewActivityRecorder(8, func() time.Time { return clock })

	for i := 1; i <= 10; i++ {
		r.Record(fmt.Sprintf("event %d", i))
	}

	entries := r.Entries()
	require.Len(t, entries, 8)
	for i, entry := range entries {
		assert.True(t, strings.HasSuffix(entry, fmt.Sprintf("— event %d", 10-i)), entry)
	}
}

func TestActivityRecorderFormat(t *testing.T) {
	clock := time.Date(2026, 10, 17, 14, 5, 9, 0, time.Local)
	r := services.NewActivityRecorder(0, func() time.Time { return clock })

	entry := r.Record("hello")
	assert.Equal(t, "14:05:09 — hello", entry)
	assert.Equal(t, 1, r.Len())
}

func TestActivityRecorderEntriesIsACopy(t *testing.T) {
	r := services.NewActivityRecorder(3, nil)
	r.Record("a")

	entries := r.Entries()
	entries[0] = "mutated"

	assert.NotEqual(t, "mutated", r.Entries()[0])
}
