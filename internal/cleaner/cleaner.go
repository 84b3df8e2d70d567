// Package cleaner drives the pending → done/skipped/failed state machine
// over an inventory, persisting progress through the checkpoint store so
// an interrupted run resumes exactly where it stopped.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"sort"
	"time"

	"github.com/lakshaymaurya-felt/macmole/internal/checkpoint"
	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/fsutil"
	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
)

// toolTimeout bounds external reclaim commands (docker, brew).
const toolTimeout = 5 * time.Minute

var (
	// ErrFilterMismatch means the loaded checkpoint was recorded for a
	// different category restriction than the requested run. Merging the
	// two would misreport what was cleaned, so the run refuses.
	ErrFilterMismatch = errors.New("checkpoint category filter does not match this run")

	// ErrInterrupted marks a run stopped by cancellation. The checkpoint
	// was flushed first; the session is paused, not failed.
	ErrInterrupted = errors.New("cleanup interrupted")
)

// ConfirmFunc approves or rejects one confirm-tier item. Implementations
// must not block indefinitely; the CLI supplies a prompt, tests supply a
// script.
type ConfirmFunc func(item inventory.Item) bool

// Action describes what the cleaner did with an item.
type Action string

const (
	ActionDelete   Action = "delete"
	ActionSkip     Action = "skip"
	ActionDryRun   Action = "dry-run"
	ActionVanished Action = "vanished"
	ActionFail     Action = "fail"
)

// Event is one per-item outcome pushed to the presentation layer. Pushes
// never block; a slow consumer drops events, never the run.
type Event struct {
	Item   inventory.Item
	Action Action
	Status checkpoint.Code
	Bytes  int64
	Reason string
}

// Options configures one clean run.
type Options struct {
	// DryRun computes actions without mutating the filesystem or the
	// persisted checkpoint.
	DryRun bool

	// AutoConfirm deletes confirm-tier items without asking.
	AutoConfirm bool

	// Categories restricts the run; empty means all categories.
	Categories []inventory.Category

	// Transient runs without reading or writing the persisted checkpoint:
	// an existing checkpoint from an interrupted run is left untouched and
	// this run's progress is not resumable. The run lock is still taken.
	Transient bool

	// Confirm approves confirm-tier items. When nil and AutoConfirm is
	// off, confirm-tier items are skipped rather than blocking.
	Confirm ConfirmFunc

	// Events receives per-item outcomes; may be nil.
	Events chan<- Event
}

// Result summarizes one run. Counters cover this session only; work
// already reflected in a resumed checkpoint is never re-counted.
type Result struct {
	State          *checkpoint.State
	Deleted        int
	Skipped        int
	Failed         int
	BytesReclaimed int64
	Remaining      int
	Interrupted    bool
	DryRun         bool
}

// RunTool executes external reclaim commands; injectable for tests.
type RunTool func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Cleaner owns one in-memory working copy of the checkpoint state during
// a run and flushes it at interval boundaries and on exit.
type Cleaner struct {
	settings config.Settings
	store    *checkpoint.Store
	opts     Options
	runTool  RunTool
}

// New creates a cleaner bound to a checkpoint store.
func New(settings config.Settings, store *checkpoint.Store, opts Options) *Cleaner {
	if settings.CheckpointInterval <= 0 {
		settings.CheckpointInterval = config.DefaultCheckpointEvery
	}
	return &Cleaner{settings: settings, store: store, opts: opts, runTool: defaultRunTool}
}

// Run executes the cleanup state machine over the inventory.
//
// With resume set, a compatible prior checkpoint is reconciled against
// the inventory and only still-pending work is processed; without it any
// prior checkpoint is discarded and every item is re-admitted as pending.
// Cancelling ctx between items flushes the checkpoint and returns
// ErrInterrupted with the partial result.
func (c *Cleaner) Run(ctx context.Context, inv *inventory.Inventory, resume bool) (*Result, error) {
	inv = inv.Filter(c.opts.Categories)

	if c.opts.DryRun {
		// Dry runs never touch the lock, the checkpoint, or the disk.
		return c.runDry(ctx, inv)
	}

	if err := c.store.Acquire(); err != nil {
		return nil, err
	}
	defer c.store.Release()

	var state *checkpoint.State
	if c.opts.Transient {
		state = checkpoint.NewState(filterIDs(c.opts.Categories))
	} else {
		var err error
		state, err = c.prepareState(resume)
		if err != nil {
			return nil, err
		}
	}

	work := c.reconcile(state, inv)
	res := &Result{State: state}

	processed := 0
	for _, item := range work {
		if ctx.Err() != nil {
			// Stop admitting pending items; flush what we have and pause.
			res.Interrupted = true
			if !c.opts.Transient {
				if err := c.store.Save(state); err != nil {
					return res, fmt.Errorf("flush checkpoint on interrupt: %w", err)
				}
			}
			res.Remaining = state.PendingCount()
			return res, ErrInterrupted
		}

		c.processItem(ctx, item, state, res)

		// The flush cadence counts every terminal transition, not just
		// deletions.
		processed++
		if !c.opts.Transient && processed%c.settings.CheckpointInterval == 0 {
			if err := c.store.Save(state); err != nil {
				return res, fmt.Errorf("write checkpoint: %w", err)
			}
		}
	}

	res.Remaining = state.PendingCount()
	if c.opts.Transient {
		return res, nil
	}
	if res.Remaining == 0 {
		// A fully completed session leaves no resumable state behind.
		if err := c.store.Clear(); err != nil {
			return res, err
		}
		return res, nil
	}
	if err := c.store.Save(state); err != nil {
		return res, fmt.Errorf("write checkpoint: %w", err)
	}
	return res, nil
}

// prepareState loads or creates the session state. Resuming validates
// compatibility; a fresh start discards any prior checkpoint.
func (c *Cleaner) prepareState(resume bool) (*checkpoint.State, error) {
	filter := filterIDs(c.opts.Categories)

	if !resume {
		if err := c.store.Clear(); err != nil {
			return nil, err
		}
		return checkpoint.NewState(filter), nil
	}

	state, err := c.store.Load()
	if errors.Is(err, checkpoint.ErrNotFound) {
		return checkpoint.NewState(filter), nil
	}
	if err != nil {
		return nil, err
	}
	if !slices.Equal(state.CategoryFilter, filter) {
		return nil, fmt.Errorf("%w: checkpoint %v, requested %v",
			ErrFilterMismatch, state.CategoryFilter, filter)
	}
	return state, nil
}

// reconcile matches the checkpoint against the inventory by path. Items
// recorded terminal stay resolved; checkpoint entries absent from the
// inventory are resolved as done with zero credit (already gone or out of
// policy), so a resumed session can still complete; inventory items
// unknown to the checkpoint are admitted as new pending work. The
// returned slice is the pending work in processing order: category
// declaration order, then size descending.
func (c *Cleaner) reconcile(state *checkpoint.State, inv *inventory.Inventory) []inventory.Item {
	items := inv.Items()
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.Path] = true
	}
	for path, st := range state.Items {
		if !known[path] && !st.Code.Terminal() {
			state.SetStatus(path, checkpoint.StatusDone, "")
		}
	}

	var work []inventory.Item
	for _, item := range items {
		st := state.Status(item.Path)
		if st.Code.Terminal() {
			continue
		}
		state.SetStatus(item.Path, checkpoint.StatusPending, "")
		work = append(work, item)
	}
	sort.SliceStable(work, func(i, j int) bool {
		if work[i].Category != work[j].Category {
			return work[i].Category < work[j].Category
		}
		return work[i].SizeBytes > work[j].SizeBytes
	})
	return work
}

// processItem decides and performs the action for one pending item, then
// records the transition in the working state.
func (c *Cleaner) processItem(ctx context.Context, item inventory.Item, state *checkpoint.State, res *Result) {
	if item.Risk == inventory.RiskConfirm && !c.opts.AutoConfirm {
		if c.opts.Confirm == nil || !c.opts.Confirm(item) {
			state.SetStatus(item.Path, checkpoint.StatusSkipped, "")
			state.ItemsProcessed++
			res.Skipped++
			c.emit(Event{Item: item, Action: ActionSkip, Status: checkpoint.StatusSkipped})
			return
		}
	}

	freed, err := c.deleteItem(ctx, item)
	switch {
	case err != nil:
		state.SetStatus(item.Path, checkpoint.StatusFailed, err.Error())
		state.ItemsProcessed++
		res.Failed++
		c.emit(Event{Item: item, Action: ActionFail, Status: checkpoint.StatusFailed, Reason: err.Error()})
	case freed == 0 && item.SizeBytes > 0 && pathGone(item.Path):
		// Vanished between scan and delete: nothing to reclaim, not a
		// failure.
		state.SetStatus(item.Path, checkpoint.StatusDone, "")
		state.ItemsProcessed++
		res.Deleted++
		c.emit(Event{Item: item, Action: ActionVanished, Status: checkpoint.StatusDone})
	default:
		state.SetStatus(item.Path, checkpoint.StatusDone, "")
		state.ItemsProcessed++
		state.BytesReclaimed += freed
		res.Deleted++
		res.BytesReclaimed += freed
		c.emit(Event{Item: item, Action: ActionDelete, Status: checkpoint.StatusDone, Bytes: freed})
	}
}

// deleteItem performs the physical removal and returns the bytes credited.
// The path must still exist and still resolve under one of its category's
// configured roots; a vanished path credits zero and is not an error.
func (c *Cleaner) deleteItem(ctx context.Context, item inventory.Item) (int64, error) {
	switch item.Category {
	case inventory.CategoryDocker:
		return c.reclaimDocker(ctx)
	case inventory.CategoryBrew:
		return c.reclaimBrew(ctx, item)
	}

	if pathGone(item.Path) {
		return 0, nil
	}
	if !c.underAllowedRoot(item) {
		return 0, fmt.Errorf("refusing to delete %s: outside configured %s roots", item.Path, item.Category)
	}
	if err := os.RemoveAll(item.Path); err != nil {
		return 0, fmt.Errorf("delete %s: %w", item.Path, err)
	}
	return item.SizeBytes, nil
}

// underAllowedRoot checks delete-time containment against the category's
// own configured roots. The target table already lists the project
// directories as roots for the marker-discovered categories; nothing else
// under the home directory qualifies.
func (c *Cleaner) underAllowedRoot(item inventory.Item) bool {
	for _, root := range c.settings.AllowedRoots(item.Category) {
		if config.UnderRoot(item.Path, root) {
			return true
		}
	}
	return false
}

// reclaimDocker prunes Docker and credits the reclaimable bytes reported
// beforehand. A missing daemon fails the item, never the run.
func (c *Cleaner) reclaimDocker(ctx context.Context) (int64, error) {
	toolCtx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	out, err := c.runTool(toolCtx, "docker", "system", "df", "--format", "{{.Reclaimable}}")
	if err != nil {
		return 0, fmt.Errorf("docker not available: %w", err)
	}
	reclaimable := fsutil.SumToolSizes(string(out))

	if _, err := c.runTool(toolCtx, "docker", "system", "prune", "-af"); err != nil {
		return 0, fmt.Errorf("docker system prune: %w", err)
	}
	return reclaimable, nil
}

// reclaimBrew runs brew cleanup and credits the cache directory shrink.
func (c *Cleaner) reclaimBrew(ctx context.Context, item inventory.Item) (int64, error) {
	toolCtx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	before := item.SizeBytes
	if _, err := c.runTool(toolCtx, "brew", "cleanup", "--prune=all"); err != nil {
		return 0, fmt.Errorf("brew cleanup: %w", err)
	}
	after, _ := fsutil.WalkSize(item.Path)
	if freed := before - after; freed > 0 {
		return freed, nil
	}
	return 0, nil
}

// runDry computes per-item actions into a scratch summary without locking,
// loading, or writing the real checkpoint, and without touching the disk.
func (c *Cleaner) runDry(ctx context.Context, inv *inventory.Inventory) (*Result, error) {
	state := checkpoint.NewState(filterIDs(c.opts.Categories))
	res := &Result{State: state, DryRun: true}

	for _, item := range inv.Items() {
		if ctx.Err() != nil {
			res.Interrupted = true
			return res, ErrInterrupted
		}
		if item.Risk == inventory.RiskConfirm && !c.opts.AutoConfirm {
			if c.opts.Confirm == nil || !c.opts.Confirm(item) {
				state.SetStatus(item.Path, checkpoint.StatusSkipped, "")
				res.Skipped++
				c.emit(Event{Item: item, Action: ActionSkip, Status: checkpoint.StatusSkipped})
				continue
			}
		}
		state.SetStatus(item.Path, checkpoint.StatusDone, "")
		res.Deleted++
		res.BytesReclaimed += item.SizeBytes
		c.emit(Event{Item: item, Action: ActionDryRun, Status: checkpoint.StatusDone, Bytes: item.SizeBytes})
	}
	return res, nil
}

func (c *Cleaner) emit(ev Event) {
	if c.opts.Events == nil {
		return
	}
	select {
	case c.opts.Events <- ev:
	default:
	}
}

func filterIDs(cats []inventory.Category) []string {
	if len(cats) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.String())
	}
	slices.Sort(ids)
	return ids
}

func pathGone(path string) bool {
	_, err := os.Lstat(path)
	return os.IsNotExist(err)
}
