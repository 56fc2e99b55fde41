// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion wraps single calls to an external text-generation
// backend. Implements: prd004-completion (R1, R2);
//
//	docs/ARCHITECTURE § Completion Backends.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/advisor-engine/internal/httputil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// Sentinel errors for backend failures. Callers match them with errors.Is
// and own the degradation policy; no backend retries internally (R2.3).
var (
	// ErrUnavailable covers connection failures and any non-success
	// backend response. Both degrade the same way.
	ErrUnavailable = errors.New("completion backend unavailable")

	// ErrTimeout covers calls that exceeded the configured timeout.
	ErrTimeout = errors.New("completion backend timeout")
)

// Client generates text for a prompt. Implementations make exactly one
// backend call per Generate invocation.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Defaults applied when the corresponding config field is zero.
const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.2
	defaultMaxTokens   = 200
)

// New builds a Client for the configured provider. An empty provider
// selects ollama, the local default.
func New(cfg types.CompletionConfig) (Client, error) {
	applyDefaults(&cfg)

	switch cfg.Provider {
	case types.ProviderOllama, "":
		return newOllama(cfg), nil
	case types.ProviderAnthropic:
		return newAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q: use ollama or anthropic", cfg.Provider)
	}
}

func applyDefaults(cfg *types.CompletionConfig) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
}

// classify maps a transport-level failure onto the package sentinels,
// keeping the underlying cause in the chain.
func classify(op string, err error) error {
	if httputil.IsTimeout(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
