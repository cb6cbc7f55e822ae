package keys

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"indexnow-go/pkg/fetch"
	"indexnow-go/pkg/logger"
)

// ErrCancelled is returned when the operator declines key verification.
// It is the only key-resolution outcome that aborts the whole pipeline.
var ErrCancelled = errors.New("key verification cancelled")

// Fetcher is the network capability the manager probes key files with.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Confirmer is the injectable interactive capability. Confirm presents
// instructions to the operator and blocks until answered; returning false
// cancels the run.
type Confirmer interface {
	Confirm(prompt string) bool
}

// NonInteractive always cancels; used when no operator is attached.
type NonInteractive struct{}

func (NonInteractive) Confirm(string) bool { return false }

// conventional key file names probed before generating a new key.
var conventionalKeyFiles = []string{
	"indexnow.txt",
	"indexnow-key.txt",
}

// Manager resolves the active IndexNow key for a host. Resolution order:
// explicit override, persisted store, key file already published on the
// host, then generation of a new key with interactive verification.
type Manager struct {
	store     *Store
	fetcher   Fetcher
	confirmer Confirmer
	log       *logger.Logger
}

func NewManager(store *Store, fetcher Fetcher, confirmer Confirmer) *Manager {
	return &Manager{
		store:     store,
		fetcher:   fetcher,
		confirmer: confirmer,
		log:       logger.GetLogger().WithField("component", "key_manager"),
	}
}

// Locations returns the two conventional publish locations for a key file.
func Locations(host string, key Key) []string {
	name := key.String() + ".txt"
	return []string{
		fmt.Sprintf("https://%s/%s", host, name),
		fmt.Sprintf("https://%s/.well-known/%s", host, name),
	}
}

// Resolve returns the active key for host. Override keys are trusted and
// persisted without verification, as are keys already in the store.
func (m *Manager) Resolve(ctx context.Context, host string, override Key) (Key, error) {
	if override != "" {
		if !override.Valid() {
			return "", fmt.Errorf("invalid key override: must be 8-128 characters of [a-zA-Z0-9-]")
		}
		if err := m.store.Put(host, override); err != nil {
			m.log.WithError(err).Warn("Failed to persist key override")
		}
		m.log.WithField("host", host).Info("Using explicit key override")
		return override, nil
	}

	if key, ok := m.store.Get(host); ok && key.Valid() {
		m.log.WithField("host", host).Debug("Using persisted key")
		return key, nil
	}

	if key, ok := m.discoverPublished(ctx, host); ok {
		if err := m.store.Put(host, key); err != nil {
			m.log.WithError(err).Warn("Failed to persist discovered key")
		}
		m.log.WithField("host", host).Info("Using key file discovered on host")
		return key, nil
	}

	return m.initializeKey(ctx, host)
}

// discoverPublished probes the conventional key file names at / and
// /.well-known/. A candidate counts only if the fetch succeeds with 200 and
// the trimmed body is itself a valid key.
func (m *Manager) discoverPublished(ctx context.Context, host string) (Key, bool) {
	for _, name := range conventionalKeyFiles {
		for _, location := range []string{
			fmt.Sprintf("https://%s/%s", host, name),
			fmt.Sprintf("https://%s/.well-known/%s", host, name),
		} {
			key, ok := m.probeKeyFile(ctx, location)
			if ok {
				return key, true
			}
		}
	}
	return "", false
}

// probeKeyFile fetches one candidate location. Network errors are a failed
// probe, not a failed run.
func (m *Manager) probeKeyFile(ctx context.Context, location string) (Key, bool) {
	resp, err := m.fetcher.Get(ctx, location)
	if err != nil {
		m.log.WithError(err).WithField("url", location).Debug("Key file probe failed")
		return "", false
	}
	if resp.StatusCode != 200 {
		return "", false
	}

	key := Key(strings.TrimSpace(string(resp.Body)))
	if !key.Valid() {
		m.log.WithField("url", location).Debug("Key file body is not a valid key")
		return "", false
	}
	return key, true
}

// initializeKey generates a fresh key and walks the operator through
// publishing it. If the key file is already reachable (for example the
// operator pre-provisioned it), no prompt is shown.
func (m *Manager) initializeKey(ctx context.Context, host string) (Key, error) {
	key := Generate()
	locations := Locations(host, key)

	if m.verifyPublished(ctx, key, locations) {
		if err := m.store.Put(host, key); err != nil {
			m.log.WithError(err).Warn("Failed to persist generated key")
		}
		return key, nil
	}

	prompt := fmt.Sprintf(
		"Generated IndexNow key for %s:\n\n    %s\n\nPublish it as a text file containing exactly the key at one of:\n    %s\n    %s\n\nPress Enter once published (or type 'cancel' to abort)",
		host, key, locations[0], locations[1],
	)

	for {
		if !m.confirmer.Confirm(prompt) {
			m.log.WithField("host", host).Warn("Key verification cancelled by operator")
			return "", ErrCancelled
		}

		if m.verifyPublished(ctx, key, locations) {
			if err := m.store.Put(host, key); err != nil {
				m.log.WithError(err).Warn("Failed to persist generated key")
			}
			m.log.WithField("host", host).Info("Key file verified")
			return key, nil
		}

		prompt = fmt.Sprintf(
			"Key file not found or its content does not match.\nExpected body %q at:\n    %s\n    %s\n\nPress Enter to re-check (or type 'cancel' to abort)",
			key, locations[0], locations[1],
		)
	}
}

// verifyPublished re-probes both locations for an exact content match.
func (m *Manager) verifyPublished(ctx context.Context, key Key, locations []string) bool {
	for _, location := range locations {
		resp, err := m.fetcher.Get(ctx, location)
		if err != nil || resp.StatusCode != 200 {
			continue
		}
		if strings.TrimSpace(string(resp.Body)) == key.String() {
			return true
		}
	}
	return false
}
