package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesCommandListsAPI(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"routes"})
	require.NoError(t, cmd.Execute())

	table := out.String()
	for _, path := range []string{
		"/health",
		"/api/auth/signin",
		"/api/users/register",
		"/api/users/:id",
		"/api/users/username/:username",
		"/api/reels",
		"/api/reels/upload",
		"/api/reels/public",
		"/api/reels/mine",
		"/api/reels/:id",
		"/api/reels/:id/like",
		"/api/reels/:id/view",
		"/api/ai/generate-caption",
		"/api/ai/generate-thumbnail",
	} {
		assert.Contains(t, table, path)
	}
	assert.NotContains(t, table, "/api/auth/firebase-login")
}
