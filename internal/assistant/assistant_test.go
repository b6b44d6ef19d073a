package assistant

import (
	"context"
	"testing"

	appErrors "finance-dashboard/errors"

	"github.com/stretchr/testify/require"
)

func TestChatWithoutClient(t *testing.T) {
	assistant, _ := newTestAssistant(t)

	_, err := assistant.Chat(context.Background(), "user-1", "show my accounts", nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUpstream, appErrors.CodeOf(err))
}

func TestAnalyzeAccountWithoutClient(t *testing.T) {
	assistant, _ := newTestAssistant(t)

	_, err := assistant.AnalyzeAccount(context.Background(), "user-1", "acc-1", "how much did I spend?")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUpstream, appErrors.CodeOf(err))
}
