package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/sheets"
)

// TableOpener connects to the remote ledger.
type TableOpener func(ctx context.Context, cfg sheets.Config) (sheets.Table, error)

// RemoteProbe records whether the remote ledger can be used. It is
// resolved once at startup; Table is set only when Err is nil.
type RemoteProbe struct {
	Table sheets.Table
	Err   error
}

// Available reports whether the remote ledger is connected.
func (p RemoteProbe) Available() bool {
	return p.Table != nil && p.Err == nil
}

// Configured reports whether remote credentials were supplied at all.
// A probe that is configured but unavailable is worth a warning; one that
// is not configured is plain local mode.
func (p RemoteProbe) Configured() bool {
	return p.Available() || (p.Err != nil && !errors.Is(p.Err, sheets.ErrNoCredentials))
}

// LocalOnly is the probe of a setup without a remote ledger.
func LocalOnly() RemoteProbe {
	return RemoteProbe{Err: sheets.ErrNoCredentials}
}

// ProbeRemote validates cfg and tries to open the remote ledger.
func ProbeRemote(ctx context.Context, cfg sheets.Config, open TableOpener) RemoteProbe {
	if !cfg.HasCredentials() {
		return LocalOnly()
	}
	if err := cfg.Validate(); err != nil {
		return RemoteProbe{Err: fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)}
	}

	table, err := open(ctx, cfg)
	if err != nil {
		return RemoteProbe{Err: fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)}
	}
	return RemoteProbe{Table: table}
}
