package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/qmuntal/stateless"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// Dataset loads walk a fixed state machine:
//
//	RESOLVING_ID -> FETCHING_SUMMARY -> RECONCILING_PREVIEW -> DONE
//
// with FAILED as the terminal error state. Each load builds its own
// machine, so concurrent loads never share state.
const (
	stateResolvingID        = "RESOLVING_ID"
	stateFetchingSummary    = "FETCHING_SUMMARY"
	stateReconcilingPreview = "RECONCILING_PREVIEW"
	stateDone               = "DONE"
	stateFailed             = "FAILED"
)

const (
	triggerResolved   = "resolved"
	triggerFetched    = "fetched"
	triggerReconciled = "reconciled"
	triggerFailed     = "failed"
)

// LoadRequest asks for one dataset to display.
type LoadRequest struct {
	// Identifier is a dataset id, digit string, filename or stored
	// blob name.
	Identifier string
	// Token authenticates backend calls; empty means no live session.
	Token string
	// LocalCSVPath optionally points at a local copy of the source CSV
	// used for preview reconciliation.
	LocalCSVPath string
}

// LoadResult is emitted when a load reaches DONE.
type LoadResult struct {
	Summary    *models.Summary
	Source     DataSource
	ResolvedID int64 // 0 when the bundled sample served the load
}

// Loader runs the dataset-loading protocol. Loading is idempotent: the
// same request against the same backend state yields the same result,
// and re-encoding a parsed identifier resolves to the same dataset.
type Loader struct {
	api *Client
}

// NewLoader wraps an API client in the loading protocol.
func NewLoader(api *Client) *Loader { return &Loader{api: api} }

// LoadDataset resolves the identifier, fetches or falls back to a
// summary, reconciles the preview and returns the result. Errors are
// returned only from states where the protocol cannot continue;
// reconciliation failures never block a load.
func (l *Loader) LoadDataset(ctx context.Context, req LoadRequest) (*LoadResult, error) {
	run := &loadRun{api: l.api, req: req, id: ParseIdentifier(req.Identifier)}

	m := stateless.NewStateMachine(stateResolvingID)
	m.Configure(stateResolvingID).
		Permit(triggerResolved, stateFetchingSummary).
		Permit(triggerFailed, stateFailed)
	m.Configure(stateFetchingSummary).
		OnEntryFrom(triggerResolved, run.fetchSummary).
		Permit(triggerFetched, stateReconcilingPreview).
		Permit(triggerFailed, stateFailed)
	m.Configure(stateReconcilingPreview).
		OnEntryFrom(triggerFetched, run.reconcilePreview).
		Permit(triggerReconciled, stateDone)

	// Resolution runs in the initial state; everything after rides on
	// entry actions of the states the triggers lead into.
	if err := run.resolve(ctx); err != nil {
		_ = m.FireCtx(ctx, triggerFailed)
		return nil, err
	}
	for _, trigger := range []string{triggerResolved, triggerFetched, triggerReconciled} {
		if err := m.FireCtx(ctx, trigger); err != nil {
			_ = m.FireCtx(ctx, triggerFailed)
			return nil, err
		}
	}
	if state := m.MustState(); state != stateDone {
		return nil, fmt.Errorf("dataset load halted in state %v", state)
	}
	return &LoadResult{Summary: run.summary, Source: run.source, ResolvedID: run.resolvedID}, nil
}

// ResolveID resolves an identifier to a live dataset id without loading
// the summary. Numeric identifiers pass through; labels consult the
// history list and therefore need a token.
func (l *Loader) ResolveID(ctx context.Context, token, identifier string) (int64, error) {
	id := ParseIdentifier(identifier)
	if id.Kind == IdentifierNumeric {
		return id.ID, nil
	}
	if token == "" {
		return 0, ErrNoToken
	}
	entries, err := l.api.History(ctx, token)
	if err != nil {
		return 0, err
	}
	if matched, ok := matchHistory(id, entries); ok {
		return matched, nil
	}
	return 0, fmt.Errorf("resolve %q: %w", id.Label, ErrUnresolvedIdentifier)
}

// loadRun carries one load through the machine.
type loadRun struct {
	api *Client
	req LoadRequest
	id  Identifier

	resolvedID     int64
	fallbackReason string // set when the live fetch is pointless
	summary        *models.Summary
	source         DataSource
}

// resolve turns the identifier into a dataset id, or arranges the
// fallback when the backend cannot answer. Labels match against the
// history list, newest entry first.
func (r *loadRun) resolve(ctx context.Context) error {
	if r.id.Kind == IdentifierNumeric {
		r.resolvedID = r.id.ID
		if r.req.Token == "" {
			r.fallbackReason = "no auth token"
		}
		return nil
	}

	if r.req.Token == "" {
		if r.id.Matches(sampleHistoryEntry()) {
			r.fallbackReason = "no auth token"
			return nil
		}
		return fmt.Errorf("resolve %q: %w", r.id.Label, ErrUnresolvedIdentifier)
	}

	entries, err := r.api.History(ctx, r.req.Token)
	if err != nil {
		// Without a reachable history the label can still demo
		// against the bundled sample.
		if recoverable(err) && r.id.Matches(sampleHistoryEntry()) {
			r.fallbackReason = fmt.Sprintf("history unavailable: %v", err)
			return nil
		}
		return fmt.Errorf("resolve %q: %w", r.id.Label, err)
	}
	if matched, ok := matchHistory(r.id, entries); ok {
		r.resolvedID = matched
		return nil
	}
	return fmt.Errorf("resolve %q: %w", r.id.Label, ErrUnresolvedIdentifier)
}

// fetchSummary loads from the backend, or serves the bundled sample
// when there is no live session or the call failed recoverably. Only a
// missing or corrupt bundled sample makes this step fail hard.
func (r *loadRun) fetchSummary(ctx context.Context, _ ...any) error {
	if r.fallbackReason == "" {
		sum, err := r.api.Summary(ctx, r.req.Token, r.resolvedID)
		switch {
		case err == nil:
			r.summary = sum
			r.source = liveSource()
			return nil
		case recoverable(err):
			r.fallbackReason = err.Error()
		default:
			return err
		}
	}

	sum, err := sampleSummary()
	if err != nil {
		return err
	}
	r.summary = sum
	r.resolvedID = 0
	r.source = fallbackSource(r.fallbackReason)
	return nil
}

// recoverable reports whether a backend failure may be served by the
// bundled sample. Transport failures and rejected tokens are; definite
// answers such as forbidden or not found are not.
func recoverable(err error) bool {
	if errors.Is(err, ErrTransportFailure) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
