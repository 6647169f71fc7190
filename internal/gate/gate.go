// Package gate is the client-side email gate in front of the prompt
// generator.
//
// The generator stays locked until an email address has been accepted by
// the capture endpoint once on this device. Acceptance is remembered as a
// local flag; the server is never asked again whether a device is unlocked.
//
//	locked ──Submit ok──▶ unlocked ──Generate──▶ feedback ──Copy──▶ copied (2s)
//	   ▲  │
//	   └──┘ validation / server / network error (message shown, still locked)
//
// The capture form is a forced gate: there is no way to dismiss it without
// a successful submission.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/ui-feedback/internal/apperror"
	"github.com/sakif/ui-feedback/internal/client/capture"
	"github.com/sakif/ui-feedback/internal/emailaddr"
	"github.com/sakif/ui-feedback/internal/prompts"
)

const (
	// FlagKey is the local store key holding the submitted email.
	FlagKey = "userEmail"

	// DefaultCopiedFor is how long Copied stays true after a copy.
	DefaultCopiedFor = 2 * time.Second

	msgLocalSave = "Could not remember your email on this device. Please try again."
)

// ErrSubmitInFlight is returned by Submit while an earlier Submit is still
// waiting for the server.
var ErrSubmitInFlight = errors.New("gate: submission already in progress")

// FlagStore persists the unlock flag. *localstore.Store satisfies it.
type FlagStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Submitter sends an email to the capture endpoint. *capture.Client
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, email string) (*capture.Response, error)
}

// State is a snapshot of everything a front end renders.
type State struct {
	Unlocked        bool
	ShowCaptureForm bool
	EmailInput      string
	Error           string
	Submitting      bool
	Feedback        string
	Copied          bool
}

// Options configures a Controller. Store and Capture are required.
type Options struct {
	Store   FlagStore
	Capture Submitter

	// Clipboard writes text to the system clipboard. Nil disables Copy.
	Clipboard func(text string) error

	// Intn draws the prompt index; nil uses math/rand/v2.
	Intn func(n int) int

	// CopiedFor overrides DefaultCopiedFor.
	CopiedFor time.Duration

	Logger *slog.Logger
}

// Controller holds the gate state. All methods are safe for concurrent use.
// The capture call runs without holding the lock, so Snapshot keeps working
// (and shows Submitting) while a submission is in flight.
type Controller struct {
	mu    sync.Mutex
	state State

	store     FlagStore
	capture   Submitter
	clipboard func(string) error
	picker    *prompts.Picker
	copiedFor time.Duration
	logger    *slog.Logger

	copyGen     uint64
	copiedTimer *time.Timer
}

// New creates a Controller in the locked state. Call Load before use.
func New(opts Options) *Controller {
	if opts.CopiedFor <= 0 {
		opts.CopiedFor = DefaultCopiedFor
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		state:     State{ShowCaptureForm: true},
		store:     opts.Store,
		capture:   opts.Capture,
		clipboard: opts.Clipboard,
		picker:    prompts.NewPicker(opts.Intn),
		copiedFor: opts.CopiedFor,
		logger:    opts.Logger,
	}
}

// Load reads the unlock flag. A store error leaves the gate locked and is
// returned to the caller.
func (c *Controller) Load(ctx context.Context) error {
	_, ok, err := c.store.Get(ctx, FlagKey)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state.Unlocked = false
		c.state.ShowCaptureForm = true
		return fmt.Errorf("gate: reading unlock flag: %w", err)
	}
	c.state.Unlocked = ok
	c.state.ShowCaptureForm = !ok
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetEmailInput records what the user typed. Editing clears a shown error.
func (c *Controller) SetEmailInput(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EmailInput = v
	c.state.Error = ""
}

// Submit validates raw and, if it looks like an email, sends it to the
// capture endpoint. On success the trimmed address is stored locally and
// the gate unlocks.
//
// Errors are also reflected in State.Error. Validation failures never reach
// the network. Transport failures and non-2xx replies carry code
// network-error; a 2xx reply with success=false carries code server-error.
func (c *Controller) Submit(ctx context.Context, raw string) error {
	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.state.EmailInput = raw

	email, err := emailaddr.Validate(raw)
	if err != nil {
		c.state.Error = err.Error()
		c.mu.Unlock()
		return err
	}

	c.state.Submitting = true
	c.state.Error = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state.Submitting = false
		c.mu.Unlock()
	}()

	resp, err := c.capture.Submit(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrTransport) {
			err = apperror.Transport(err)
		}
		c.logger.Warn("email submission failed", slog.String("error", err.Error()))
		c.fail(err)
		return err
	}
	if !resp.Success {
		err := apperror.Server(resp.Error)
		c.fail(err)
		return err
	}

	if err := c.store.Set(ctx, FlagKey, email); err != nil {
		c.logger.Error("failed to persist unlock flag", slog.String("error", err.Error()))
		c.fail(errors.New(msgLocalSave))
		return fmt.Errorf("gate: saving unlock flag: %w", err)
	}

	c.mu.Lock()
	c.state.Unlocked = true
	c.state.ShowCaptureForm = false
	c.state.EmailInput = ""
	c.state.Error = ""
	c.mu.Unlock()
	return nil
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.state.Error = err.Error()
	c.mu.Unlock()
}

// Generate picks a prompt uniformly at random. It does nothing and returns
// false while the gate is locked.
func (c *Controller) Generate() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Unlocked {
		return "", false
	}
	c.state.Feedback = c.picker.Pick()
	c.clearCopiedLocked()
	return c.state.Feedback, true
}

// Copy puts the current prompt on the clipboard and sets Copied for
// CopiedFor. It returns false when locked, when there is nothing to copy, or
// when the clipboard write fails (logged, not surfaced).
func (c *Controller) Copy() bool {
	c.mu.Lock()
	if !c.state.Unlocked || c.state.Feedback == "" || c.clipboard == nil {
		c.mu.Unlock()
		return false
	}
	text := c.state.Feedback
	c.mu.Unlock()

	if err := c.clipboard(text); err != nil {
		c.logger.Warn("failed to copy to clipboard", slog.String("error", err.Error()))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearCopiedLocked()
	c.state.Copied = true
	gen := c.copyGen
	c.copiedTimer = time.AfterFunc(c.copiedFor, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A newer Copy or Generate owns the flag now.
		if c.copyGen == gen {
			c.state.Copied = false
		}
	})
	return true
}

// Close stops the pending Copied timer, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
		c.copiedTimer = nil
	}
}

func (c *Controller) clearCopiedLocked() {
	c.copyGen++
	c.state.Copied = false
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
		c.copiedTimer = nil
	}
}
