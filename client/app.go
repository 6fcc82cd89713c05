package client

import (
	"time"
)

// App bundles the client core: one dispatcher, one session, one API client and
// the services built on top. The UI layer receives this instead of reaching
// for global singletons.
type App struct {
	Dispatcher *Dispatcher
	Session    *Session
	API        *APIClient
	Auth       *AuthManager
	Sync       *SyncLoop
	Notifier   *Notifier
	Media      *MediaCache
	Prefs      *Preferences
}

// Options configures app construction.
type Options struct {
	BaseURL      string
	DataDir      string        // defaults to DefaultAppDir()
	PollInterval time.Duration // defaults to DefaultPollInterval
}

// NewApp wires the client core together.
func NewApp(opts Options) (*App, error) {
	dir := opts.DataDir
	if dir == "" {
		var err error
		dir, err = DefaultAppDir()
		if err != nil {
			return nil, err
		}
	}

	keystore, err := NewFileKeystore(dir)
	if err != nil {
		return nil, err
	}

	session := &Session{}
	api := NewAPIClient(opts.BaseURL, session)
	dispatcher := NewDispatcher()
	notifier := NewNotifier()
	syncLoop := NewSyncLoop(api, dispatcher, notifier, opts.PollInterval)

	return &App{
		Dispatcher: dispatcher,
		Session:    session,
		API:        api,
		Auth:       NewAuthManager(api, session, keystore, syncLoop, notifier),
		Sync:       syncLoop,
		Notifier:   notifier,
		Media:      NewMediaCache(api),
		Prefs:      LoadPreferences(dir),
	}, nil
}

// Close stops the sync loop and the dispatcher. The session stays intact so a
// remembered user is logged back in on the next run.
func (a *App) Close() {
	a.Sync.Stop()
	a.Dispatcher.Stop()
}
