package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfirmationLink(t *testing.T) {
	assert.Equal(t, "https://app.example/confirm/ab12", ConfirmationLink("https://app.example/confirm", "ab12"))
	assert.Equal(t, "https://app.example/confirm/ab12", ConfirmationLink("https://app.example/confirm/", "ab12"))
	assert.Equal(t, "http://x/c/a%2Fb", ConfirmationLink("http://x/c", "a/b"))
}

func TestLog_NotifyConfirmation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLog(zap.New(core), "http://localhost:3000/v1/confirm-email")

	require.NoError(t, n.NotifyConfirmation(context.Background(), "jane@test.com", "ab12"))

	entries := logs.FilterMessage("confirmation link").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "jane@test.com", fields["to"])
	assert.Equal(t, "http://localhost:3000/v1/confirm-email/ab12", fields["link"])
}
