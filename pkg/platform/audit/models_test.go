package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, tag := range []string{"ORG_CREATED", "SECURITY_CONFIG_CHANGE", "SYSTEM_ERROR", "ACCESS_DENIED"} {
		action, err := ParseAction(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, Action(tag), action)
	}

	_, err := ParseAction("org_created")
	require.ErrorContains(t, err, `unknown audit action "org_created"`)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusCritical.Valid())
	assert.False(t, Status("PENDING").Valid())
}

func TestTracker(t *testing.T) {
	assert.Nil(t, TrackerFrom(context.Background()))
	var none *Tracker
	assert.False(t, none.Terminal())

	ctx, tracker := WithTracker(context.Background())
	assert.Same(t, tracker, TrackerFrom(ctx))
	assert.True(t, tracker.MarkTerminal())
	assert.False(t, tracker.MarkTerminal(), "second mark reports an existing record")
	assert.True(t, tracker.Terminal())
}
