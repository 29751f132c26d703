// Package application contains the use-case services sitting between the
// HTTP adapter and the driven ports.
package application

import (
	"errors"
	"sync"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
)

// ErrNoActiveConnection is returned when an operation needs a Jenkins client
// but no connection has been activated.
var ErrNoActiveConnection = errors.New("no active jenkins connection")

// ClientFactory builds a Jenkins client bound to one connection. Each call
// must produce a fresh client so cache and retry state never leak across
// connections.
type ClientFactory func(conn model.Connection) (driven.JenkinsClient, error)

// ClientProvider enables runtime hot-swap of the Jenkins client. It holds a
// mutex-protected reference to the client for the currently active connection,
// so switching servers takes effect without restarting the application.
type ClientProvider struct {
	mu      sync.RWMutex
	factory ClientFactory
	conn    *model.Connection
	client  driven.JenkinsClient
}

// NewClientProvider creates a provider with no active connection. Activate
// must be called before Get returns a usable client.
func NewClientProvider(factory ClientFactory) *ClientProvider {
	return &ClientProvider{factory: factory}
}

// Activate builds a fresh client for the given connection and swaps it in.
// On factory failure the previous client is kept.
func (p *ClientProvider) Activate(conn model.Connection) error {
	client, err := p.factory(conn)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = &conn
	p.client = client
	return nil
}

// Get returns the client for the active connection, or ErrNoActiveConnection
// when none has been activated.
func (p *ClientProvider) Get() (driven.JenkinsClient, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.client == nil {
		return nil, ErrNoActiveConnection
	}
	return p.client, nil
}

// Active returns a copy of the active connection, or nil when none is set.
func (p *ClientProvider) Active() *model.Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.conn == nil {
		return nil
	}
	conn := *p.conn
	return &conn
}

// Clear drops the active connection and its client.
func (p *ClientProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = nil
	p.client = nil
}

// HasClient returns true if a client is currently held.
func (p *ClientProvider) HasClient() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}
