// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/commit"
	"github.com/walteh/gesto/pkg/connectivity"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/session"
	"github.com/walteh/gesto/pkg/syncer"
)

// 🔀 Workflow selects the commit rules of a basket screen
type Workflow int

const (
	// WorkflowDispatch is the warehouse checkout: move is gated on stock and
	// connection only
	WorkflowDispatch Workflow = iota
	// WorkflowReported is the area request: the request must be reported
	// before it can be moved, and every edit withdraws the report
	WorkflowReported
)

func (w Workflow) String() string {
	if w == WorkflowReported {
		return "reported"
	}
	return "dispatch"
}

// Connection is the part of the connectivity monitor a screen reads
type Connection interface {
	State() connectivity.State
}

// BasketOptions configures a basket screen
type BasketOptions struct {
	// Context picks the saved list and sync endpoint, derived from Workflow
	// when empty
	Context     remote.BasketContext
	Workflow    Workflow
	StockPolicy basket.StockPolicy
	// UserID is sent along with every sync push when set
	UserID string
	Sync   syncer.Options
	Commit commit.Policy
}

func (o BasketOptions) withDefaults() BasketOptions {
	if o.Context == "" {
		o.Context = remote.ContextCheckout
		if o.Workflow == WorkflowReported {
			o.Context = remote.ContextRequest
		}
	}
	return o
}

// DispatchOptions returns the options of the warehouse checkout screen
func DispatchOptions() BasketOptions {
	return BasketOptions{
		Context:     remote.ContextCheckout,
		Workflow:    WorkflowDispatch,
		StockPolicy: basket.StockUnknownAsZero,
	}
}

// ReportedOptions returns the options of the area request screen
func ReportedOptions() BasketOptions {
	return BasketOptions{
		Context:     remote.ContextRequest,
		Workflow:    WorkflowReported,
		StockPolicy: basket.StockUnknownDistinct,
	}
}

// 🛒 Basket is the controller behind one request's line item screen. It owns
// the item list; the sync engine and the commit orchestrator only ever see
// snapshots of it.
type Basket struct {
	api     remote.Baskets
	session *session.Context
	conn    Connection
	opts    BasketOptions

	mu       sync.Mutex
	area     session.RequestContext
	items    basket.Items
	reported bool
	// edits counts accepted edits and reloads; a report only sticks to the
	// generation it was sent for
	edits   uint64
	query   string
	marks   basket.Marks
	loadErr error
	engine  *syncer.Engine
	orch    *commit.Orchestrator
}

// NewBasket creates a basket controller. conn may be nil, the screen is then
// always considered online.
func NewBasket(api remote.Baskets, sc *session.Context, conn Connection, opts BasketOptions) *Basket {
	return &Basket{
		api:     api,
		session: sc,
		conn:    conn,
		opts:    opts.withDefaults(),
	}
}

// 📥 Load reads the selected area and its saved list. The context of the
// first Load also bounds the background sync pushes until Close.
//
// A missing or rejected area clears the session and returns ErrSessionReset.
// Any other fetch failure leaves an empty list and is reported in the view.
func (b *Basket) Load(ctx context.Context) error {
	b.mu.Lock()
	loaded := b.engine != nil
	b.mu.Unlock()
	if loaded {
		return b.Reload(ctx)
	}

	rc, err := b.session.Require(ctx)
	if errors.Is(err, session.ErrNoArea) {
		return b.reset(ctx, err)
	}
	if err != nil {
		return err
	}

	items, fetchErr := b.fetch(ctx, rc.AreaID)
	if errors.Is(fetchErr, remote.ErrAreaGone) {
		return b.reset(ctx, fetchErr)
	}

	engine := syncer.New(ctx, syncer.PushFunc(func(ctx context.Context, batch syncer.Batch) error {
		return b.api.Sync(ctx, b.opts.Context, remote.SyncRequest{
			Products: batch.Items,
			UserID:   b.opts.UserID,
			AreaID:   rc.AreaID,
		})
	}), b.opts.Sync)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.area = rc
	b.replace(items, fetchErr)
	b.engine = engine
	b.orch = commit.New(b.api, b.session, rc.AreaID, b.opts.Commit)

	zerolog.Ctx(ctx).Info().
		Str("area", rc.AreaID).
		Stringer("workflow", b.opts.Workflow).
		Int("items", len(b.items)).
		Msg("basket loaded")

	return nil
}

// 🔁 Reload discards unsynced edits and replaces the list from the server.
// On a fetch failure the current list stays and the error is returned.
func (b *Basket) Reload(ctx context.Context) error {
	engine, orch, area, err := b.handles()
	if err != nil {
		return err
	}

	engine.Cancel()

	items, err := b.fetch(ctx, area.AreaID)
	if errors.Is(err, remote.ErrAreaGone) {
		return b.reset(ctx, err)
	}
	if err != nil {
		return errors.Errorf("reloading basket: %w", err)
	}

	orch.ResetAttempts()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.replace(items, nil)
	return nil
}

func (b *Basket) fetch(ctx context.Context, areaID string) (basket.Items, error) {
	items, err := b.api.SavedProducts(ctx, b.opts.Context, areaID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("area", areaID).Msg("fetching saved products")
		return nil, err
	}
	return basket.SortPositiveFirst(items), nil
}

// replace must be called with mu held
func (b *Basket) replace(items basket.Items, loadErr error) {
	if items == nil {
		items = basket.Items{}
	}
	b.items = items
	b.loadErr = loadErr
	b.edits++
	b.reported = items.AnyReported()
	b.marks.Retain(items)
}

func (b *Basket) reset(ctx context.Context, cause error) error {
	zerolog.Ctx(ctx).Warn().Err(cause).Msg("area unavailable, clearing session")
	if err := b.session.Clear(ctx); err != nil {
		return errors.Errorf("clearing session after %v: %w", cause, err)
	}
	return errors.Errorf("%w: %s", ErrSessionReset, cause.Error())
}

func (b *Basket) handles() (*syncer.Engine, *commit.Orchestrator, session.RequestContext, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.engine == nil {
		return nil, nil, session.RequestContext{}, ErrNotLoaded
	}
	return b.engine, b.orch, b.area, nil
}

// ✏️ Edit sets the quantity of one item. Invalid input and unknown ids are
// ignored and report false. A change restarts the sync quiet window and, in
// the reported workflow, withdraws the report.
func (b *Basket) Edit(id basket.ID, raw string) bool {
	b.mu.Lock()
	if b.engine == nil {
		b.mu.Unlock()
		return false
	}
	next, changed := basket.TryApply(b.items, id, raw)
	if !changed {
		b.mu.Unlock()
		return false
	}
	b.items = next
	b.edits++
	if b.opts.Workflow == WorkflowReported {
		b.reported = false
	}
	engine := b.engine
	b.mu.Unlock()

	engine.Notify(next)
	return true
}

// Toggle flips the mark on an item and returns the new state
func (b *Basket) Toggle(id basket.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.items.Find(id) < 0 {
		return false
	}
	return b.marks.Toggle(id)
}

// ClearMarks removes every mark
func (b *Basket) ClearMarks() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.marks.Clear()
}

// Filter sets the search query applied to the view
func (b *Basket) Filter(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = query
}

// Items returns the full list
func (b *Basket) Items() basket.Items {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items
}

// Subscribe streams sync status changes until Close
func (b *Basket) Subscribe(buffer int) (<-chan syncer.Status, error) {
	engine, _, _, err := b.handles()
	if err != nil {
		return nil, err
	}
	return engine.Subscribe(buffer), nil
}

// 👀 BasketView is everything a basket screen renders
type BasketView struct {
	Area     session.RequestContext
	Workflow Workflow
	// Items is the filtered list in display order
	Items      basket.Items
	Total      int
	Query      string
	Marked     []basket.ID
	Compliance basket.Compliance
	Reported   bool
	Sync       syncer.Status
	SyncErr    error
	// LoadErr is set when the list could not be fetched and is shown empty
	LoadErr        error
	Connection     connectivity.State
	Gate           commit.Decision
	MoveAttempts   int
	SubmitAttempts int
	Done           bool
}

// View evaluates the screen state
func (b *Basket) View() BasketView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}

// view must be called with mu held
func (b *Basket) view() BasketView {
	v := BasketView{
		Area:       b.area,
		Workflow:   b.opts.Workflow,
		Items:      basket.Filter(b.items, b.query),
		Total:      len(b.items),
		Query:      b.query,
		Marked:     b.marks.IDs(),
		Compliance: basket.Evaluate(b.items, b.opts.StockPolicy),
		Reported:   b.reported,
		LoadErr:    b.loadErr,
		Connection: b.connection(),
	}
	if b.engine != nil {
		v.Sync = b.engine.Status()
		v.SyncErr = b.engine.Err()
		v.MoveAttempts = b.orch.Attempts(commit.ActionMove)
		v.SubmitAttempts = b.orch.Attempts(commit.ActionSubmit)
		v.Done = b.orch.Done()
	}
	v.Gate = b.gate(v)
	return v
}

// Gate evaluates the move gate for the current list
func (b *Basket) Gate() commit.Decision {
	return b.View().Gate
}

func (b *Basket) connection() connectivity.State {
	if b.conn == nil {
		return connectivity.State{Online: true}
	}
	return b.conn.State()
}

// gate must be called with mu held
func (b *Basket) gate(v BasketView) commit.Decision {
	in := commit.GateInput{
		AnyExcess:       v.Compliance.AnyExcess,
		SyncFailed:      v.Sync == syncer.StatusError,
		Offline:         !v.Connection.Online,
		RequireReported: b.opts.Workflow == WorkflowReported,
		Reported:        v.Reported,
		Done:            v.Done,
	}
	if b.orch != nil {
		in.InFlight = b.orch.InFlight()
	}
	return commit.Evaluate(in)
}

// 📨 Submit pushes any pending edit and reports the request to the
// warehouse. Only the reported workflow offers it.
//
// A failed push blocks the report: nothing is sent to the warehouse until
// the server holds the quantities being reported. An edit or reload that
// lands while the report is in flight leaves the basket unreported.
func (b *Basket) Submit(ctx context.Context) error {
	if b.opts.Workflow != WorkflowReported {
		return ErrUnsupported
	}
	engine, orch, _, err := b.handles()
	if err != nil {
		return err
	}

	b.mu.Lock()
	gen := b.edits
	b.mu.Unlock()

	if err := engine.Flush(ctx); err != nil {
		return errors.Errorf("syncing before submit: %w", err)
	}
	if err := orch.Submit(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	stale := b.edits != gen
	if !stale {
		b.reported = true
	}
	b.mu.Unlock()

	if stale {
		zerolog.Ctx(ctx).Info().Msg("request reported, but the list changed meanwhile")
		return nil
	}
	zerolog.Ctx(ctx).Info().Msg("request reported")
	return nil
}

// 🚚 Move pushes any pending edit, evaluates the gate and commits the
// movement. On success the session is cleared and the screen is done.
func (b *Basket) Move(ctx context.Context) error {
	engine, orch, _, err := b.handles()
	if err != nil {
		return err
	}

	if err := engine.Flush(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("sync before move failed")
	}

	b.mu.Lock()
	snapshot := b.items
	v := b.view()
	b.mu.Unlock()

	if err := orch.Move(ctx, snapshot, v.Gate); err != nil {
		return err
	}

	engine.Cancel()
	zerolog.Ctx(ctx).Info().Int("items", len(snapshot)).Msg("movement completed")
	return nil
}

// Close stops the sync engine, dropping any pending push
func (b *Basket) Close() {
	b.mu.Lock()
	engine := b.engine
	b.mu.Unlock()
	if engine != nil {
		engine.Close()
	}
}
