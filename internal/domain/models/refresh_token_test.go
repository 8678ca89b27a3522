package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenLive(t *testing.T) {
	now := time.Now()

	token := NewRefreshToken(uuid.New(), "tok", now.Add(time.Hour))
	assert.True(t, token.Live(now))
	assert.False(t, token.Live(now.Add(2*time.Hour)))

	token.Revoked = true
	assert.False(t, token.Live(now))
}

func TestJoinRequestStatusFinalized(t *testing.T) {
	assert.False(t, JoinRequestPending.Finalized())
	assert.True(t, JoinRequestAccepted.Finalized())
	assert.True(t, JoinRequestRejected.Finalized())
	assert.True(t, JoinRequestLeft.Finalized())
	assert.True(t, JoinRequestRemoved.Finalized())
}
