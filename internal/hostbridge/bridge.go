// Package hostbridge obtains the tenant identity from the embedding host
// shell. The dashboard runs inside the FSM shell and cannot know which
// account and company it serves until the shell hands over its context.
//
// The handshake can fail (the shell may never answer), so the bridge
// degrades to identity passed via URL parameters, and finally to "unknown"
// sentinels that downstream validation rejects as NOT_FOUND.
package hostbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/logging"
)

// State is the bridge lifecycle state.
type State string

const (
	// StateUninitialized means Initialize has not been called.
	StateUninitialized State = "uninitialized"

	// StateAwaitingHandshake means the context request is in flight.
	StateAwaitingHandshake State = "awaitingHandshake"

	// StateReady means the shell answered and the context is authoritative.
	StateReady State = "ready"

	// StateFallback means the shell never answered and the context was
	// assembled from URL parameters and sentinels.
	StateFallback State = "fallback"

	// StateFailed means the handshake failed and no fallback was available.
	StateFailed State = "failed"
)

// UnknownValue fills context fields the fallback path cannot supply.
const UnknownValue = "unknown"

// DefaultHandshakeTimeout bounds how long the shell gets to answer the
// context request.
const DefaultHandshakeTimeout = 10 * time.Second

// HostContext is the identity handed over by the shell.
type HostContext struct {
	CloudHost     string `json:"cloudHost"`
	Account       string `json:"account"`
	AccountID     string `json:"accountId"`
	Company       string `json:"company"`
	CompanyID     string `json:"companyId"`
	User          string `json:"user"`
	UserID        string `json:"userId"`
	CurrentLocale string `json:"currentLocale"`
}

// FallbackParams is identity scraped from URL parameters, used when the
// shell never answers. Empty fields become UnknownValue.
type FallbackParams struct {
	CloudHost string
	Account   string
	AccountID string
	Company   string
	CompanyID string
	User      string
	UserID    string
	Locale    string
}

// Bridge manages the shell handshake and exposes shell operations.
type Bridge struct {
	messenger Messenger
	logger    *zap.Logger
	timeout   time.Duration
	fallback  *FallbackParams

	mu      sync.RWMutex
	state   State
	hostCtx *HostContext
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithHandshakeTimeout overrides the handshake timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithFallbackParams enables the URL-parameter fallback path.
func WithFallbackParams(params FallbackParams) Option {
	return func(b *Bridge) {
		b.fallback = &params
	}
}

// New creates a bridge over the given messenger.
func New(messenger Messenger, logger *zap.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		messenger: messenger,
		logger:    logger,
		timeout:   DefaultHandshakeTimeout,
		state:     StateUninitialized,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Initialize performs the context handshake with the shell. On timeout or
// transport failure it falls back to URL parameters when configured, and
// otherwise moves to StateFailed.
//
// Initialize is idempotent: once a context has been resolved (ready or
// fallback), subsequent calls return the cached context without contacting
// the shell again. Refresh is the explicit re-run path.
func (b *Bridge) Initialize(ctx context.Context) (*HostContext, error) {
	b.mu.Lock()
	if b.hostCtx != nil {
		cached := b.hostCtx
		b.mu.Unlock()
		return cached, nil
	}
	b.state = StateAwaitingHandshake
	b.mu.Unlock()

	return b.handshake(ctx)
}

func (b *Bridge) handshake(ctx context.Context) (*HostContext, error) {
	handshakeCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := b.messenger.Request(handshakeCtx, Message{Type: MsgRequireContext})
	if err == nil {
		var hostCtx HostContext
		if decodeErr := json.Unmarshal(reply.Payload, &hostCtx); decodeErr != nil {
			err = fmt.Errorf("failed to decode host context: %w", decodeErr)
		} else {
			b.mu.Lock()
			b.state = StateReady
			b.hostCtx = &hostCtx
			b.mu.Unlock()

			b.logger.Info("host context received",
				zap.String(logging.FieldAccountID, hostCtx.AccountID),
				zap.String(logging.FieldCompanyID, hostCtx.CompanyID),
			)
			return &hostCtx, nil
		}
	}

	b.logger.Warn("host handshake failed", zap.Error(err))

	if b.fallback != nil {
		hostCtx := b.fallback.toContext()
		b.mu.Lock()
		b.state = StateFallback
		b.hostCtx = hostCtx
		b.mu.Unlock()

		b.logger.Info("using fallback host context",
			zap.String(logging.FieldAccountID, hostCtx.AccountID),
			zap.String(logging.FieldCompanyID, hostCtx.CompanyID),
		)
		return hostCtx, nil
	}

	b.mu.Lock()
	b.state = StateFailed
	b.hostCtx = nil
	b.mu.Unlock()
	return nil, fmt.Errorf("host handshake failed: %w", err)
}

// Refresh re-runs the handshake, replacing any previous context.
func (b *Bridge) Refresh(ctx context.Context) (*HostContext, error) {
	b.mu.Lock()
	b.state = StateAwaitingHandshake
	b.mu.Unlock()

	return b.handshake(ctx)
}

// Context returns the current host context. It errors until a successful
// Initialize (or fallback) has run.
func (b *Bridge) Context() (*HostContext, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.hostCtx == nil {
		return nil, fmt.Errorf("host context not available (state %s)", b.state)
	}
	return b.hostCtx, nil
}

// ShowNotification asks the shell to display a toast.
func (b *Bridge) ShowNotification(ctx context.Context, level, message string) error {
	return b.notify(ctx, MsgShowNotification, map[string]string{
		"type":    level,
		"message": message,
	})
}

// OpenModal asks the shell to open a modal at the given URL.
func (b *Bridge) OpenModal(ctx context.Context, title, url string) error {
	return b.notify(ctx, MsgShowModal, map[string]string{
		"title": title,
		"url":   url,
	})
}

// Navigate asks the shell to route to another screen.
func (b *Bridge) Navigate(ctx context.Context, target string) error {
	return b.notify(ctx, MsgNavigate, map[string]string{
		"target": target,
	})
}

// GetPermissions fetches the current user's permissions for one business
// object from the shell.
func (b *Bridge) GetPermissions(ctx context.Context, objectName string) ([]string, error) {
	reply, err := b.request(ctx, MsgGetPermissions, map[string]string{"objectName": objectName})
	if err != nil {
		return nil, err
	}
	var permissions []string
	if err := json.Unmarshal(reply.Payload, &permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}
	return permissions, nil
}

// GetSetting fetches one named shell setting.
func (b *Bridge) GetSetting(ctx context.Context, key string) (string, error) {
	reply, err := b.request(ctx, MsgGetSettings, map[string]string{"key": key})
	if err != nil {
		return "", err
	}
	return decodeStringPayload(reply.Payload)
}

// GetStorageItem fetches one item from the shell's key-value storage.
func (b *Bridge) GetStorageItem(ctx context.Context, key string) (string, error) {
	reply, err := b.request(ctx, MsgGetStorageItem, map[string]string{"key": key})
	if err != nil {
		return "", err
	}
	return decodeStringPayload(reply.Payload)
}

func (b *Bridge) notify(ctx context.Context, msgType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return b.messenger.Notify(ctx, Message{Type: msgType, Payload: raw})
}

func (b *Bridge) request(ctx context.Context, msgType string, payload any) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
		}
		raw = encoded
	}
	return b.messenger.Request(ctx, Message{Type: msgType, Payload: raw})
}

func (p *FallbackParams) toContext() *HostContext {
	return &HostContext{
		CloudHost:     orUnknown(p.CloudHost),
		Account:       orUnknown(p.Account),
		AccountID:     orUnknown(p.AccountID),
		Company:       orUnknown(p.Company),
		CompanyID:     orUnknown(p.CompanyID),
		User:          orUnknown(p.User),
		UserID:        orUnknown(p.UserID),
		CurrentLocale: orUnknown(p.Locale),
	}
}

func orUnknown(v string) string {
	if v == "" {
		return UnknownValue
	}
	return v
}

func decodeStringPayload(raw json.RawMessage) (string, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("failed to decode payload: %w", err)
	}
	return value, nil
}
