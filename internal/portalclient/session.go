package portalclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultPollInterval = 60 * time.Second

var ErrNoSession = errors.New("portal: session is not initialized")

type UnreadCounter interface {
	UnreadAlertCount(ctx context.Context) (int64, error)
}

// Session carries the caller's credentials and the alert poller bound to them.
// Init starts a lifecycle and Teardown ends it.
type Session struct {
	log zerolog.Logger

	mu            sync.Mutex
	token         string
	clientContext *uuid.UUID
	stopPoll      context.CancelFunc
	pollDone      chan struct{}
}

func NewSession(log zerolog.Logger) *Session {
	return &Session{log: log}
}

// Init binds a token to the session, ending any previous lifecycle first.
func (s *Session) Init(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("portal: empty token")
	}
	s.Teardown()
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Teardown stops alert polling and forgets the token and client context.
// It must not be called from a polling callback.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.token = ""
	s.clientContext = nil
	stop, done := s.detachPollerLocked()
	s.mu.Unlock()
	waitPoller(stop, done)
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetClientContext scopes admin requests to one client; nil clears it.
func (s *Session) SetClientContext(id *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		s.clientContext = nil
		return
	}
	copied := *id
	s.clientContext = &copied
}

func (s *Session) ClientContext() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientContext == nil {
		return nil
	}
	copied := *s.clientContext
	return &copied
}

// StartAlertPolling reports the unread count to onCount right away and then
// every interval. A running poller is replaced. Polling ends on Teardown or
// when ctx is done. Failed polls are logged and skipped.
func (s *Session) StartAlertPolling(ctx context.Context, source UnreadCounter, interval time.Duration, onCount func(int64)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return ErrNoSession
	}
	stop, done := s.detachPollerLocked()
	pollCtx, cancel := context.WithCancel(ctx)
	s.stopPoll = cancel
	s.pollDone = make(chan struct{})
	finished := s.pollDone
	s.mu.Unlock()

	waitPoller(stop, done)
	go s.poll(pollCtx, source, interval, onCount, finished)
	return nil
}

func (s *Session) poll(ctx context.Context, source UnreadCounter, interval time.Duration, onCount func(int64), done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		count, err := source.UnreadAlertCount(ctx)
		switch {
		case err == nil:
			onCount(count)
		case ctx.Err() != nil:
			return
		default:
			s.log.Warn().Err(err).Msg("alert poll failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Session) detachPollerLocked() (context.CancelFunc, chan struct{}) {
	stop, done := s.stopPoll, s.pollDone
	s.stopPoll, s.pollDone = nil, nil
	return stop, done
}

func waitPoller(stop context.CancelFunc, done chan struct{}) {
	if stop == nil {
		return
	}
	stop()
	<-done
}
