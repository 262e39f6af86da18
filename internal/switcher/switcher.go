// Package switcher keeps two named bookmark sets and swaps the visible bar
// between them, persisting whichever set is currently displayed.
package switcher

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dastanaron/barswitch/internal/logger"
	"github.com/dastanaron/barswitch/internal/mirror"
	"github.com/dastanaron/barswitch/internal/models"
	"github.com/dastanaron/barswitch/internal/store"
)

// Folder names under the "Other Bookmarks" anchor.
const (
	BackupRootName = "Bookmarks Backup"
	PrivateName    = "Private"
	WorkName       = "Work"
)

// Flag keys in the persisted flag store.
const (
	flagMode        = "mode"
	flagInitialized = "initialized"
	flagBackupRoot  = "backup_root_id"
	flagPrivateID   = "private_id"
	flagWorkID      = "work_id"
)

// Backend is the store the switcher operates on.
type Backend interface {
	store.Store
	store.FlagStore
}

// Switcher orchestrates toggling and auto-saving. Construct one per process
// with New; all state lives on the instance.
type Switcher struct {
	store    Backend
	debounce time.Duration
	cooldown time.Duration

	// busy gates toggles and suppresses auto-saves triggered by the
	// switcher's own bar mutations.
	busy atomic.Bool

	mu      sync.Mutex
	timer   *time.Timer // pending auto-save, single slot
	lastErr error
}

// New creates a switcher over the given store. debounce is the quiet period
// before an auto-save fires; cooldown is how long the busy gate stays up
// after a toggle rewrites the bar.
func New(st Backend, debounce, cooldown time.Duration) *Switcher {
	return &Switcher{
		store:    st,
		debounce: debounce,
		cooldown: cooldown,
	}
}

// Mode returns the currently active mode, defaulting to private when unset.
func (s *Switcher) Mode(ctx context.Context) (models.Mode, error) {
	value, ok, err := s.store.GetFlag(ctx, flagMode)
	if err != nil {
		return models.ModePrivate, err
	}
	mode := models.Mode(value)
	if !ok || !mode.Valid() {
		return models.ModePrivate, nil
	}
	return mode, nil
}

func (s *Switcher) setMode(ctx context.Context, mode models.Mode) error {
	return s.store.SetFlag(ctx, flagMode, string(mode))
}

// LastError returns the most recent operation failure, or nil.
func (s *Switcher) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Switcher) recordErr(msg string, err error) {
	logger.Error(msg, err)
	s.mu.Lock()
	s.lastErr = fmt.Errorf("%s: %w", msg, err)
	s.mu.Unlock()
}

// Bootstrap provisions the backup hierarchy and mode flag. It is idempotent:
// repeated runs converge on one backup root with one Private and one Work
// folder. On first run the Private folder is seeded with whatever the bar
// already holds; Work always starts empty.
func (s *Switcher) Bootstrap(ctx context.Context) error {
	root, err := s.findOrCreate(ctx, store.OtherID, BackupRootName)
	if err != nil {
		return fmt.Errorf("ensure backup root: %w", err)
	}

	private, privateCreated, err := s.findOrCreateTracked(ctx, root.ID, PrivateName)
	if err != nil {
		return fmt.Errorf("ensure %s folder: %w", PrivateName, err)
	}
	work, err := s.findOrCreate(ctx, root.ID, WorkName)
	if err != nil {
		return fmt.Errorf("ensure %s folder: %w", WorkName, err)
	}

	s.cacheID(ctx, flagBackupRoot, root.ID)
	s.cacheID(ctx, flagPrivateID, private.ID)
	s.cacheID(ctx, flagWorkID, work.ID)

	_, initialized, err := s.store.GetFlag(ctx, flagInitialized)
	if err != nil {
		return err
	}
	if privateCreated && !initialized {
		// Capture whatever the user had before the first run.
		if err := mirror.CopyTree(ctx, s.store, store.BarID, private.ID); err != nil {
			s.recordErr("seed private backup", err)
		}
	}
	if err := s.store.SetFlag(ctx, flagInitialized, "1"); err != nil {
		return err
	}

	if _, ok, err := s.store.GetFlag(ctx, flagMode); err != nil {
		return err
	} else if !ok {
		if err := s.setMode(ctx, models.ModePrivate); err != nil {
			return err
		}
	}

	logger.Info("bootstrap complete", map[string]interface{}{
		"backup_root": root.ID,
		"private":     private.ID,
		"work":        work.ID,
	})
	return nil
}

// findOrCreate returns the folder named name under parentID, creating it if
// absent. Matching is exact string equality on the title.
func (s *Switcher) findOrCreate(ctx context.Context, parentID int, name string) (*models.Node, error) {
	node, _, err := s.findOrCreateTracked(ctx, parentID, name)
	return node, err
}

func (s *Switcher) findOrCreateTracked(ctx context.Context, parentID int, name string) (*models.Node, bool, error) {
	children, err := s.store.Children(ctx, parentID)
	if err != nil {
		return nil, false, err
	}
	for i := range children {
		if children[i].IsFolder() && children[i].Title == name {
			return &children[i], false, nil
		}
	}
	node, err := s.store.Create(ctx, parentID, name, nil)
	if err != nil {
		return nil, false, err
	}
	return node, true, nil
}

func (s *Switcher) cacheID(ctx context.Context, key string, id int) {
	if err := s.store.SetFlag(ctx, key, strconv.Itoa(id)); err != nil {
		logger.Warn("failed to cache folder id", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

// cachedFolder returns the live folder behind a cached id flag, or nil when
// the flag is unset or the id no longer resolves to a folder.
func (s *Switcher) cachedFolder(ctx context.Context, key string) *models.Node {
	value, ok, err := s.store.GetFlag(ctx, key)
	if err != nil || !ok {
		return nil
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	node, err := s.store.Get(ctx, id)
	if err != nil || !node.IsFolder() {
		return nil
	}
	return node
}

func (s *Switcher) resolveBackupRoot(ctx context.Context) (*models.Node, error) {
	if node := s.cachedFolder(ctx, flagBackupRoot); node != nil {
		return node, nil
	}
	// Cached id is stale or missing; fall back to lookup by name.
	children, err := s.store.Children(ctx, store.OtherID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].IsFolder() && children[i].Title == BackupRootName {
			s.cacheID(ctx, flagBackupRoot, children[i].ID)
			return &children[i], nil
		}
	}
	return nil, fmt.Errorf("backup root %q: %w", BackupRootName, store.ErrNotFound)
}

// resolveFolder finds the backup folder for mode, preferring the cached id
// and re-resolving by name (then re-caching) when the cache is stale.
func (s *Switcher) resolveFolder(ctx context.Context, mode models.Mode) (*models.Node, error) {
	key, name := flagPrivateID, PrivateName
	if mode == models.ModeWork {
		key, name = flagWorkID, WorkName
	}

	if node := s.cachedFolder(ctx, key); node != nil {
		return node, nil
	}

	root, err := s.resolveBackupRoot(ctx)
	if err != nil {
		return nil, err
	}
	children, err := s.store.Children(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].IsFolder() && children[i].Title == name {
			s.cacheID(ctx, key, children[i].ID)
			return &children[i], nil
		}
	}
	return nil, fmt.Errorf("backup folder %q: %w", name, store.ErrNotFound)
}

// save replaces the contents of the backup folder for mode with the current
// bar contents.
func (s *Switcher) save(ctx context.Context, mode models.Mode) error {
	folder, err := s.resolveFolder(ctx, mode)
	if err != nil {
		return err
	}
	if err := mirror.ClearTree(ctx, s.store, folder.ID); err != nil {
		return err
	}
	return mirror.CopyTree(ctx, s.store, store.BarID, folder.ID)
}

// SaveNow immediately persists the bar into the active set's backup,
// bypassing the debouncer.
func (s *Switcher) SaveNow(ctx context.Context) error {
	mode, err := s.Mode(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, mode)
}

// Toggle saves the bar into the active set's backup, loads the other set
// onto the bar and flips the mode. At most one toggle runs at a time; a
// toggle requested while one is in progress is dropped.
func (s *Switcher) Toggle(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		logger.Info("toggle already in progress, ignoring")
		return nil
	}

	barTouched := false
	defer func() {
		if barTouched {
			// Hold the gate long enough for our own bar mutations to drain
			// through the debounced auto-save without re-saving.
			time.AfterFunc(s.cooldown, func() { s.busy.Store(false) })
		} else {
			s.busy.Store(false)
		}
	}()

	current, err := s.Mode(ctx)
	if err != nil {
		s.recordErr("read mode", err)
		return err
	}
	next := current.Other()

	if err := s.save(ctx, current); err != nil {
		s.recordErr("save current bar", err)
		return err
	}

	// Resolve the target before touching the bar so a missing backup
	// folder aborts with the bar intact.
	nextFolder, err := s.resolveFolder(ctx, next)
	if err != nil {
		s.recordErr("resolve target backup", err)
		return err
	}

	barTouched = true
	if err := mirror.ClearTree(ctx, s.store, store.BarID); err != nil {
		s.recordErr("clear bar", err)
		return err
	}
	if err := mirror.CopyTree(ctx, s.store, nextFolder.ID, store.BarID); err != nil {
		s.recordErr("load target backup", err)
		return err
	}

	if err := s.setMode(ctx, next); err != nil {
		s.recordErr("persist mode", err)
		return err
	}

	logger.Info("toggled", map[string]interface{}{"mode": string(next)})
	return nil
}

// HandleEvent feeds a store mutation into the auto-save debouncer. Events
// that do not touch the bar are ignored; each bar event restarts the quiet
// period, so a burst of mutations yields a single save.
func (s *Switcher) HandleEvent(ev store.Event) {
	if !ev.Touches(store.BarID) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.autoSave)
}

func (s *Switcher) autoSave() {
	// Hold the gate for the whole save so a toggle can never interleave
	// with it; a save that finds the gate up is dropped, not queued.
	if !s.busy.CompareAndSwap(false, true) {
		logger.Debug("auto-save skipped, toggle in progress")
		return
	}
	defer s.busy.Store(false)

	ctx := context.Background()
	mode, err := s.Mode(ctx)
	if err != nil {
		s.recordErr("auto-save read mode", err)
		return
	}
	if err := s.save(ctx, mode); err != nil {
		s.recordErr("auto-save", err)
		return
	}
	logger.Debug("auto-saved bar", map[string]interface{}{"mode": string(mode)})
}

// Watch subscribes to store mutations and feeds them to the debouncer until
// ctx is done.
func (s *Switcher) Watch(ctx context.Context) {
	events := s.store.Subscribe(ctx)
	go func() {
		for ev := range events {
			s.HandleEvent(ev)
		}
	}()
}

// Stop cancels any pending auto-save.
func (s *Switcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
