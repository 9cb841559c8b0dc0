package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/gunitk/testforge/logger"
)

// Manager owns the configured providers and the availability cache. It
// selects a primary provider per request and falls back across the
// remaining available providers in configuration order, one attempt each.
//
// The availability cache is read by many requests concurrently and is only
// mutated by an explicit Refresh.
type Manager struct {
	mu         sync.RWMutex
	providers  []Provider
	available  map[string]bool
	defaultKey string
	liveProbe  bool
	logger     logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLiveProbe enables connectivity probing during Refresh for providers
// that support it.
func WithLiveProbe() ManagerOption {
	return func(m *Manager) { m.liveProbe = true }
}

// NewManager builds a manager over providers in configuration order.
// defaultKey selects the primary provider when a request names none; an
// unknown defaultKey falls back to the first configured provider.
func NewManager(providers []Provider, defaultKey string, log logger.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		providers:  providers,
		available:  make(map[string]bool, len(providers)),
		defaultKey: defaultKey,
		logger:     log,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.lookup(defaultKey) == nil && len(providers) > 0 {
		m.defaultKey = providers[0].Key()
	}

	for _, p := range providers {
		m.available[p.Key()] = p.Available()
	}
	return m
}

func (m *Manager) lookup(key string) Provider {
	for _, p := range m.providers {
		if p.Key() == key {
			return p
		}
	}
	return nil
}

// DefaultKey returns the configured default provider key.
func (m *Manager) DefaultKey() string {
	return m.defaultKey
}

// Descriptors returns a snapshot of all configured providers with their
// cached availability.
func (m *Manager) Descriptors() []Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Descriptor, 0, len(m.providers))
	for _, p := range m.providers {
		d := p.Describe()
		d.Available = m.available[p.Key()]
		out = append(out, d)
	}
	return out
}

// Refresh re-evaluates provider availability. With live probing enabled,
// providers implementing LiveProber additionally need a successful probe.
// Returns the refreshed descriptor snapshot.
func (m *Manager) Refresh(ctx context.Context) []Descriptor {
	fresh := make(map[string]bool, len(m.providers))
	for _, p := range m.providers {
		avail := p.Available()
		if avail && m.liveProbe {
			if prober, ok := p.(LiveProber); ok {
				if err := prober.Probe(ctx); err != nil {
					m.logger.Warn(ctx, "provider probe failed", map[string]interface{}{
						"provider": p.Key(),
						"error":    err.Error(),
					})
					avail = false
				}
			}
		}
		fresh[p.Key()] = avail
	}

	m.mu.Lock()
	m.available = fresh
	m.mu.Unlock()

	return m.Descriptors()
}

func (m *Manager) isAvailable(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available[key]
}

// chain builds the ordered fallback chain for one request: the requested
// provider (when configured and available) first, else the default, then
// every remaining available provider in configuration order.
func (m *Manager) chain(ctx context.Context, requestedKey string) []Provider {
	var ordered []Provider
	seen := make(map[string]struct{}, len(m.providers))

	appendIfAvailable := func(p Provider) {
		if p == nil {
			return
		}
		if _, dup := seen[p.Key()]; dup {
			return
		}
		if !m.isAvailable(p.Key()) {
			return
		}
		seen[p.Key()] = struct{}{}
		ordered = append(ordered, p)
	}

	if requestedKey != "" {
		requested := m.lookup(requestedKey)
		if requested == nil || !m.isAvailable(requestedKey) {
			m.logger.Warn(ctx, "requested provider not usable, using fallback order", map[string]interface{}{
				"requested": requestedKey,
			})
		}
		appendIfAvailable(requested)
	}
	appendIfAvailable(m.lookup(m.defaultKey))
	for _, p := range m.providers {
		appendIfAvailable(p)
	}

	return ordered
}

// Select resolves the provider a request would be served by without
// sending anything.
func (m *Manager) Select(ctx context.Context, requestedKey string) (Provider, error) {
	ordered := m.chain(ctx, requestedKey)
	if len(ordered) == 0 {
		return nil, ErrAllProvidersFailed
	}
	return ordered[0], nil
}

// Generate sends the prompt to the selected provider and advances through
// the fallback chain on failure, one attempt per available provider with
// the same prompt. It returns the raw output and the key of the provider
// that satisfied the request.
func (m *Manager) Generate(ctx context.Context, prompt string, requestedKey string) (string, string, error) {
	ordered := m.chain(ctx, requestedKey)
	if len(ordered) == 0 {
		return "", "", fmt.Errorf("%w: no provider is configured and available", ErrAllProvidersFailed)
	}

	var lastErr error
	for _, p := range ordered {
		raw, err := p.Send(ctx, prompt)
		if err != nil {
			lastErr = err
			m.logger.Warn(ctx, "provider call failed, advancing fallback chain", map[string]interface{}{
				"provider": p.Key(),
				"error":    err.Error(),
			})
			continue
		}

		m.logger.Info(ctx, "provider call succeeded", map[string]interface{}{
			"provider": p.Key(),
		})
		return raw, p.Key(), nil
	}

	return "", "", fmt.Errorf("%w: %d providers attempted, last error: %s",
		ErrAllProvidersFailed, len(ordered), lastErr.Error())
}
