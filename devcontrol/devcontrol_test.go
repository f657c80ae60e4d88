package devcontrol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingControllerRecordsInvocation(t *testing.T) {
	c := NewLoggingController()
	err := c.Invoke(context.Background(), "aa:bb", nil, "turn_on", map[string]any{"brightness": 80})
	require.NoError(t, err)

	calls := c.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "aa:bb", calls[0].Address)
	assert.Equal(t, "turn_on", calls[0].Method)
	assert.NotEmpty(t, calls[0].ID)
}

func TestLoggingControllerAssignsUniqueIDs(t *testing.T) {
	c := NewLoggingController()
	c.Invoke(context.Background(), "aa:bb", nil, "turn_on", nil)
	c.Invoke(context.Background(), "aa:bb", nil, "turn_off", nil)

	calls := c.Calls()
	require.Len(t, calls, 2)
	assert.NotEqual(t, calls[0].ID, calls[1].ID)
}
