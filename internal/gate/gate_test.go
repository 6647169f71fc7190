package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ui-feedback/internal/apperror"
	"github.com/sakif/ui-feedback/internal/client/capture"
	"github.com/sakif/ui-feedback/internal/client/localstore"
	"github.com/sakif/ui-feedback/internal/emailaddr"
	"github.com/sakif/ui-feedback/internal/prompts"
)

// =========================================================================
// FAKES
// =========================================================================

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []string
	resp  *capture.Response
	err   error
	block chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, email string) (*capture.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, email)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.resp, f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	ctrl   *Controller
	store  *memStore
	sub    *fakeSubmitter
	copied []string
	clipFn func(string) error
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		store: newMemStore(),
		sub:   &fakeSubmitter{resp: &capture.Response{Success: true, Message: "Email saved successfully"}},
	}
	o := Options{
		Store:   h.store,
		Capture: h.sub,
		Clipboard: func(s string) error {
			if h.clipFn != nil {
				return h.clipFn(s)
			}
			h.copied = append(h.copied, s)
			return nil
		},
		Logger: quietLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.ctrl = New(o)
	t.Cleanup(h.ctrl.Close)
	require.NoError(t, h.ctrl.Load(context.Background()))
	return h
}

func unlocked(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()
	h := newHarness(t, opts...)
	require.NoError(t, h.ctrl.Submit(context.Background(), "me@example.com"))
	require.True(t, h.ctrl.Snapshot().Unlocked)
	return h
}

// =========================================================================
// LOAD
// =========================================================================

func TestLoad(t *testing.T) {
	t.Run("no flag shows the form", func(t *testing.T) {
		h := newHarness(t)
		s := h.ctrl.Snapshot()
		assert.False(t, s.Unlocked)
		assert.True(t, s.ShowCaptureForm)
	})

	t.Run("flag present unlocks", func(t *testing.T) {
		store := newMemStore()
		store.values[FlagKey] = "earlier@example.com"
		c := New(Options{Store: store, Capture: &fakeSubmitter{}, Logger: quietLogger()})

		require.NoError(t, c.Load(context.Background()))
		s := c.Snapshot()
		assert.True(t, s.Unlocked)
		assert.False(t, s.ShowCaptureForm)
	})

	t.Run("store error stays locked", func(t *testing.T) {
		store := newMemStore()
		store.getErr = errors.New("disk gone")
		c := New(Options{Store: store, Capture: &fakeSubmitter{}, Logger: quietLogger()})

		err := c.Load(context.Background())
		require.Error(t, err)
		assert.False(t, c.Snapshot().Unlocked)
		assert.True(t, c.Snapshot().ShowCaptureForm)
	})
}

// =========================================================================
// SUBMIT
// =========================================================================

func TestSubmit_ValidationNeverReachesServer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
		wantMsg  string
		wantIs   error
	}{
		{name: "empty", input: "", wantCode: apperror.CodeRequired, wantMsg: "Email is required", wantIs: emailaddr.ErrRequired},
		{name: "spaces", input: "   ", wantCode: apperror.CodeRequired, wantMsg: "Email is required", wantIs: emailaddr.ErrRequired},
		{name: "no at", input: "plainaddress", wantCode: apperror.CodeInvalidFormat, wantMsg: "Please enter a valid email", wantIs: emailaddr.ErrInvalidFormat},
		{name: "no dot", input: "a@b", wantCode: apperror.CodeInvalidFormat, wantMsg: "Please enter a valid email", wantIs: emailaddr.ErrInvalidFormat},
		{name: "inner space", input: "a b@c.de", wantCode: apperror.CodeInvalidFormat, wantMsg: "Please enter a valid email", wantIs: emailaddr.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			err := h.ctrl.Submit(context.Background(), tt.input)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, tt.wantCode, apperror.CodeOf(err))

			s := h.ctrl.Snapshot()
			assert.Equal(t, tt.wantMsg, s.Error)
			assert.False(t, s.Unlocked)
			assert.False(t, s.Submitting)
			assert.Equal(t, 0, h.sub.callCount())
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	tests := []struct {
		name string
		resp *capture.Response
	}{
		{name: "new record", resp: &capture.Response{Success: true, Message: "Email saved successfully"}},
		{name: "already exists", resp: &capture.Response{Success: true, Message: "Email already exists"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.sub.resp = tt.resp
			h.ctrl.SetEmailInput("  Me@Example.com ")

			require.NoError(t, h.ctrl.Submit(context.Background(), "  Me@Example.com "))

			s := h.ctrl.Snapshot()
			assert.True(t, s.Unlocked)
			assert.False(t, s.ShowCaptureForm)
			assert.Empty(t, s.EmailInput)
			assert.Empty(t, s.Error)
			assert.False(t, s.Submitting)

			assert.Equal(t, []string{"Me@Example.com"}, h.sub.calls, "server gets the trimmed address")
			assert.Equal(t, "Me@Example.com", h.store.values[FlagKey])
		})
	}
}

func TestSubmit_NetworkError(t *testing.T) {
	h := newHarness(t)
	h.sub.err = apperror.Transport(errors.New("dial tcp: connection refused"))

	err := h.ctrl.Submit(context.Background(), "me@example.com")

	require.Error(t, err)
	assert.Equal(t, apperror.CodeNetworkError, apperror.CodeOf(err))
	s := h.ctrl.Snapshot()
	assert.Equal(t, "Network error. Please check your connection and try again.", s.Error)
	assert.False(t, s.Unlocked)
	assert.True(t, s.ShowCaptureForm)
	assert.False(t, s.Submitting)
	assert.NotContains(t, h.store.values, FlagKey)
}

func TestSubmit_PlainErrorIsTreatedAsTransport(t *testing.T) {
	h := newHarness(t)
	h.sub.err = errors.New("boom")

	err := h.ctrl.Submit(context.Background(), "me@example.com")

	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Equal(t, "Network error. Please check your connection and try again.", h.ctrl.Snapshot().Error)
}

func TestSubmit_OtherAppErrorIsTreatedAsTransport(t *testing.T) {
	h := newHarness(t)
	h.sub.err = apperror.Unauthorized("proxy auth required")

	err := h.ctrl.Submit(context.Background(), "me@example.com")

	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Equal(t, apperror.CodeNetworkError, apperror.CodeOf(err))
	assert.Equal(t, "Network error. Please check your connection and try again.", h.ctrl.Snapshot().Error)
}

func TestSubmit_Non2xxRepliesAreNetworkErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "401 with envelope", status: http.StatusUnauthorized, body: `{"success":false,"error":"proxy auth required"}`},
		{name: "403", status: http.StatusForbidden, body: `{"success":false,"error":"blocked"}`},
		{name: "404 plain text", status: http.StatusNotFound, body: "not found"},
		{name: "400 validation envelope", status: http.StatusBadRequest, body: `{"success":false,"error":"Email is required","code":"required"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := newMemStore()
			c := New(Options{Store: store, Capture: capture.New(srv.URL, time.Second), Logger: quietLogger()})
			defer c.Close()
			require.NoError(t, c.Load(context.Background()))

			err := c.Submit(context.Background(), "me@example.com")

			require.Error(t, err)
			assert.Equal(t, apperror.CodeNetworkError, apperror.CodeOf(err))
			s := c.Snapshot()
			assert.Equal(t, "Network error. Please check your connection and try again.", s.Error)
			assert.False(t, s.Unlocked)
			assert.NotContains(t, store.values, FlagKey)
		})
	}
}

func TestSubmit_ServerReportedFailure(t *testing.T) {
	tests := []struct {
		name    string
		errText string
		wantMsg string
	}{
		{name: "with message", errText: "Mailbox blocked", wantMsg: "Mailbox blocked"},
		{name: "without message", errText: "", wantMsg: "Failed to submit email. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.sub.resp = &capture.Response{Success: false, Error: tt.errText}

			err := h.ctrl.Submit(context.Background(), "me@example.com")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrServer)
			assert.Equal(t, apperror.CodeServerError, apperror.CodeOf(err))
			s := h.ctrl.Snapshot()
			assert.Equal(t, tt.wantMsg, s.Error)
			assert.False(t, s.Unlocked)
			assert.False(t, s.Submitting)
		})
	}
}

func TestSubmit_LocalSaveFailureStaysLocked(t *testing.T) {
	h := newHarness(t)
	h.store.setErr = errors.New("read-only file system")

	err := h.ctrl.Submit(context.Background(), "me@example.com")

	require.Error(t, err)
	s := h.ctrl.Snapshot()
	assert.False(t, s.Unlocked)
	assert.NotEmpty(t, s.Error)
	assert.False(t, s.Submitting)
}

func TestSubmit_InFlight(t *testing.T) {
	h := newHarness(t)
	h.sub.block = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Submit(context.Background(), "me@example.com") }()

	require.Eventually(t, func() bool { return h.ctrl.Snapshot().Submitting }, time.Second, time.Millisecond)

	err := h.ctrl.Submit(context.Background(), "other@example.com")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(h.sub.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, h.sub.callCount())
	assert.False(t, h.ctrl.Snapshot().Submitting)
	assert.True(t, h.ctrl.Snapshot().Unlocked)
}

func TestSetEmailInput_ClearsError(t *testing.T) {
	h := newHarness(t)
	require.Error(t, h.ctrl.Submit(context.Background(), "nope"))
	require.NotEmpty(t, h.ctrl.Snapshot().Error)

	h.ctrl.SetEmailInput("nope@")

	s := h.ctrl.Snapshot()
	assert.Empty(t, s.Error)
	assert.Equal(t, "nope@", s.EmailInput)
}

// =========================================================================
// GENERATE / COPY
// =========================================================================

func TestGenerate_LockedIsNoop(t *testing.T) {
	h := newHarness(t)

	got, ok := h.ctrl.Generate()

	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Empty(t, h.ctrl.Snapshot().Feedback)
}

func TestGenerate_PicksFromCatalogue(t *testing.T) {
	var next int
	h := unlocked(t, func(o *Options) {
		o.Intn = func(n int) int { return next % n }
	})

	for _, idx := range []int{0, 17, prompts.Len() - 1} {
		next = idx
		got, ok := h.ctrl.Generate()
		require.True(t, ok)
		assert.Equal(t, prompts.At(idx), got)
		assert.Equal(t, got, h.ctrl.Snapshot().Feedback)
	}
}

func TestCopy(t *testing.T) {
	t.Run("locked", func(t *testing.T) {
		h := newHarness(t)
		assert.False(t, h.ctrl.Copy())
		assert.Empty(t, h.copied)
	})

	t.Run("nothing generated yet", func(t *testing.T) {
		h := unlocked(t)
		assert.False(t, h.ctrl.Copy())
		assert.Empty(t, h.copied)
	})

	t.Run("copies and clears after the window", func(t *testing.T) {
		h := unlocked(t, func(o *Options) { o.CopiedFor = 30 * time.Millisecond })
		text, _ := h.ctrl.Generate()

		require.True(t, h.ctrl.Copy())
		assert.Equal(t, []string{text}, h.copied)
		assert.True(t, h.ctrl.Snapshot().Copied)

		assert.Eventually(t, func() bool { return !h.ctrl.Snapshot().Copied }, time.Second, 5*time.Millisecond)
	})

	t.Run("generate resets copied", func(t *testing.T) {
		h := unlocked(t, func(o *Options) { o.CopiedFor = time.Hour })
		h.ctrl.Generate()
		require.True(t, h.ctrl.Copy())

		h.ctrl.Generate()

		assert.False(t, h.ctrl.Snapshot().Copied)
	})

	t.Run("clipboard failure is silent", func(t *testing.T) {
		h := unlocked(t)
		h.clipFn = func(string) error { return errors.New("no display") }
		h.ctrl.Generate()

		assert.False(t, h.ctrl.Copy())
		s := h.ctrl.Snapshot()
		assert.False(t, s.Copied)
		assert.Empty(t, s.Error)
	})
}

// =========================================================================
// END TO END
// =========================================================================

func TestGate_AgainstRealServerAndStore(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"Email saved successfully"}`))
	}))
	defer srv.Close()

	store, err := localstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	newCtrl := func() *Controller {
		c := New(Options{
			Store:   store,
			Capture: capture.New(srv.URL, time.Second),
			Logger:  quietLogger(),
		})
		require.NoError(t, c.Load(context.Background()))
		return c
	}

	first := newCtrl()
	require.True(t, first.Snapshot().ShowCaptureForm)
	require.NoError(t, first.Submit(context.Background(), "loop@example.com"))

	// A fresh controller over the same store starts unlocked without any
	// further server call.
	second := newCtrl()
	assert.True(t, second.Snapshot().Unlocked)
	_, ok := second.Generate()
	assert.True(t, ok)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
}
