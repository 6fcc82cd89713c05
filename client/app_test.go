package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppWiresCore(t *testing.T) {
	srv := authServer(t)

	app, err := NewApp(Options{BaseURL: srv.URL, DataDir: t.TempDir()})
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.Auth.HasLocalSession())
	require.NoError(t, app.Auth.Login(context.Background(), "alice", "password123", true))
	assert.True(t, app.Auth.HasLocalSession())
	assert.Equal(t, "access-1", app.Session.AccessToken())
}

func TestAppRemembersSessionAcrossRestarts(t *testing.T) {
	srv := authServer(t)
	dir := t.TempDir()

	app, err := NewApp(Options{BaseURL: srv.URL, DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, app.Auth.Login(context.Background(), "alice", "password123", true))
	app.Close()

	restarted, err := NewApp(Options{BaseURL: srv.URL, DataDir: dir})
	require.NoError(t, err)
	defer restarted.Close()

	assert.True(t, restarted.Auth.HasLocalSession())
	assert.True(t, restarted.Auth.SilentRefresh(context.Background()))
	assert.True(t, restarted.Session.Authenticated())
}

func TestAppCloseStopsSync(t *testing.T) {
	srv := authServer(t)

	app, err := NewApp(Options{BaseURL: srv.URL, DataDir: t.TempDir(), PollInterval: time.Hour})
	require.NoError(t, err)

	app.Close()
	assert.False(t, app.Dispatcher.Invoke(func() {}))
}
