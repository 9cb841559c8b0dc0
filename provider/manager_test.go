package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/logger"
)

type fakeProvider struct {
	key       string
	family    Family
	available bool
	response  string
	err       error
	probeErr  error
	calls     int
	probes    int
}

func (f *fakeProvider) Key() string { return f.key }

func (f *fakeProvider) Describe() Descriptor {
	return Descriptor{Key: f.key, Name: f.key, Family: f.family}
}

func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Send(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeProvider) Probe(ctx context.Context) error {
	f.probes++
	return f.probeErr
}

func newTestManager(providers []Provider, defaultKey string, opts ...ManagerOption) *Manager {
	return NewManager(providers, defaultKey, logger.NewTestLogger(), opts...)
}

func TestGenerateUsesDefaultProvider(t *testing.T) {
	a := &fakeProvider{key: "a", available: true, response: "from a"}
	b := &fakeProvider{key: "b", available: true, response: "from b"}

	m := newTestManager([]Provider{a, b}, "b")

	raw, used, err := m.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "from b", raw)
	assert.Equal(t, "b", used)
	assert.Equal(t, 0, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestGenerateHonorsRequestedProvider(t *testing.T) {
	a := &fakeProvider{key: "a", available: true, response: "from a"}
	b := &fakeProvider{key: "b", available: true, response: "from b"}

	m := newTestManager([]Provider{a, b}, "a")

	raw, used, err := m.Generate(context.Background(), "prompt", "b")
	require.NoError(t, err)
	assert.Equal(t, "from b", raw)
	assert.Equal(t, "b", used)
	assert.Equal(t, 0, a.calls)
}

func TestGenerateFallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{key: "primary", available: true, err: ErrProviderCallFailed}
	secondary := &fakeProvider{key: "secondary", available: true, response: "rescued"}

	m := newTestManager([]Provider{primary, secondary}, "primary")

	raw, used, err := m.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "rescued", raw)
	assert.Equal(t, "secondary", used)
	assert.Equal(t, 1, primary.calls, "exactly one attempt against the primary")
	assert.Equal(t, 1, secondary.calls)
}

func TestGenerateSkipsUnavailableProviders(t *testing.T) {
	offline := &fakeProvider{key: "offline", available: false, response: "never"}
	online := &fakeProvider{key: "online", available: true, response: "ok"}

	m := newTestManager([]Provider{offline, online}, "offline")

	raw, used, err := m.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", raw)
	assert.Equal(t, "online", used)
	assert.Equal(t, 0, offline.calls)
}

func TestGenerateUnknownRequestedKeyFallsBack(t *testing.T) {
	a := &fakeProvider{key: "a", available: true, response: "from a"}

	m := newTestManager([]Provider{a}, "a")

	raw, used, err := m.Generate(context.Background(), "prompt", "no-such-provider")
	require.NoError(t, err)
	assert.Equal(t, "from a", raw)
	assert.Equal(t, "a", used)
}

func TestGenerateAllProvidersFailed(t *testing.T) {
	a := &fakeProvider{key: "a", available: true, err: errors.New("boom")}
	b := &fakeProvider{key: "b", available: true, err: errors.New("bust")}

	m := newTestManager([]Provider{a, b}, "a")

	_, _, err := m.Generate(context.Background(), "prompt", "")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestGenerateNoProvidersConfigured(t *testing.T) {
	m := newTestManager(nil, "")

	_, _, err := m.Generate(context.Background(), "prompt", "")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestGenerateNoProvidersAvailable(t *testing.T) {
	a := &fakeProvider{key: "a", available: false}

	m := newTestManager([]Provider{a}, "a")

	_, _, err := m.Generate(context.Background(), "prompt", "")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, 0, a.calls)
}

func TestSelect(t *testing.T) {
	a := &fakeProvider{key: "a", available: true}
	b := &fakeProvider{key: "b", available: true}

	m := newTestManager([]Provider{a, b}, "a")

	selected, err := m.Select(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", selected.Key())

	selected, err = m.Select(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "a", selected.Key())
}

func TestDescriptorsReflectCachedAvailability(t *testing.T) {
	a := &fakeProvider{key: "a", available: true}
	b := &fakeProvider{key: "b", available: false}

	m := newTestManager([]Provider{a, b}, "a")

	descriptors := m.Descriptors()
	require.Len(t, descriptors, 2)
	assert.True(t, descriptors[0].Available)
	assert.False(t, descriptors[1].Available)
}

func TestRefreshUpdatesAvailability(t *testing.T) {
	a := &fakeProvider{key: "a", available: false}

	m := newTestManager([]Provider{a}, "a")
	assert.False(t, m.Descriptors()[0].Available)

	// Credentials appear after process start.
	a.available = true

	descriptors := m.Refresh(context.Background())
	assert.True(t, descriptors[0].Available)

	_, used, err := m.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "a", used)
}

func TestRefreshWithLiveProbe(t *testing.T) {
	healthy := &fakeProvider{key: "healthy", available: true}
	broken := &fakeProvider{key: "broken", available: true, probeErr: errors.New("connect refused")}

	m := newTestManager([]Provider{healthy, broken}, "healthy", WithLiveProbe())

	descriptors := m.Refresh(context.Background())
	require.Len(t, descriptors, 2)
	assert.True(t, descriptors[0].Available)
	assert.False(t, descriptors[1].Available)
	assert.Equal(t, 1, healthy.probes)
	assert.Equal(t, 1, broken.probes)
}

func TestRefreshWithoutLiveProbeSkipsProbing(t *testing.T) {
	p := &fakeProvider{key: "a", available: true, probeErr: errors.New("would fail")}

	m := newTestManager([]Provider{p}, "a")
	descriptors := m.Refresh(context.Background())

	assert.True(t, descriptors[0].Available)
	assert.Equal(t, 0, p.probes)
}

func TestDefaultKeyFallsBackToFirstConfigured(t *testing.T) {
	a := &fakeProvider{key: "a", available: true}

	m := newTestManager([]Provider{a}, "missing")
	assert.Equal(t, "a", m.DefaultKey())
}
