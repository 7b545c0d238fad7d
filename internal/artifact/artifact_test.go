package artifact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteguard/internal/invoice"
	id "quoteguard/pkg/domain"
)

func TestVerifyURL_ContainsOnlyThePublicIdentifier(t *testing.T) {
	publicID := id.NewPublicID()
	url := VerifyURL("https://quoteguard.example", publicID)
	assert.Equal(t, "https://quoteguard.example/verify/"+publicID.String(), url)
}

type recordingRenderer struct {
	mu   sync.Mutex
	jobs []Job
	err  error
	done chan struct{}
}

func (r *recordingRenderer) Render(_ context.Context, job Job) error {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	return r.err
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_DeliversJobsToAllRenderers(t *testing.T) {
	first := &recordingRenderer{done: make(chan struct{}, 1)}
	second := &recordingRenderer{done: make(chan struct{}, 1)}
	d := NewDispatcher(4, discardLogger(), first, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	d.Enqueue(Job{Record: invoice.Record{PublicID: id.NewPublicID()}, OwnerName: "Ada"})

	waitFor(t, first.done)
	waitFor(t, second.done)
	assert.Equal(t, 1, first.count())
	assert.Equal(t, "Ada", first.jobs[0].OwnerName)
}

func TestDispatcher_RendererFailureDoesNotStopTheLoop(t *testing.T) {
	failing := &recordingRenderer{err: errors.New("chromium exploded"), done: make(chan struct{}, 2)}
	d := NewDispatcher(4, discardLogger(), failing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	d.Enqueue(Job{Record: invoice.Record{PublicID: id.NewPublicID()}})
	waitFor(t, failing.done)
	d.Enqueue(Job{Record: invoice.Record{PublicID: id.NewPublicID()}})
	waitFor(t, failing.done)

	assert.Equal(t, 2, failing.count())
}

func TestDispatcher_EnqueueNeverBlocksWhenFull(t *testing.T) {
	// No Run loop, so the buffer of one fills immediately; the second
	// enqueue must return anyway.
	d := NewDispatcher(1, discardLogger())

	done := make(chan struct{})
	go func() {
		d.Enqueue(Job{Record: invoice.Record{PublicID: id.NewPublicID()}})
		d.Enqueue(Job{Record: invoice.Record{PublicID: id.NewPublicID()}})
		close(done)
	}()
	waitFor(t, done)
}

func waitFor[T any](t *testing.T, ch chan T) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for background worker")
	}
}
