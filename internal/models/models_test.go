package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStamp(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	at := time.Date(2026, 10, 18, 12, 30, 0, 123456789, moscow)

	assert.Equal(t, "2026-10-18T09:30:00.123456789Z", SessionStamp(at))

	// Одинаковый момент дает одинаковую метку независимо от зоны
	assert.Equal(t, SessionStamp(at), SessionStamp(at.UTC()))
}
