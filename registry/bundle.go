package registry

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// State is a BundleEntry's lifecycle position. It is monotonic:
// Pending -> Loaded or Pending -> Failed, never reversed.
type State int

const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ScriptInjector performs the actual chunk fetch. The browser-portable
// implementation constructs a <script async> element and attaches it
// to the document head; onDone must be invoked exactly once, with nil
// on the script's load event or a non-nil error on its error event.
// Tests substitute an injector they complete by hand to control timing
// deterministically.
type ScriptInjector interface {
	Inject(url string, onDone func(error))
}

// NopInjector fails every bundle immediately. Useful for registries
// that are only ever populated via Define and never fetch chunks.
type NopInjector struct{}

func (NopInjector) Inject(url string, onDone func(error)) {
	onDone(errNopInjector)
}

// Future is a single-completion signal: one consumer-visible
// resolution or rejection, safe to Wait on from multiple goroutines.
// It exists alongside the waiter-callback channel (BundleEntry) to
// preserve the legacy synchronous-callback interface while still
// giving async consumers something to block on.
type Future struct {
	mu   sync.Mutex
	done bool
	err  error
	ch   chan struct{}
}

func newFuture() *Future {
	return &Future{ch: make(chan struct{})}
}

func (f *Future) settle(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}
	f.done = true
	f.err = err
	close(f.ch)
}

// Wait blocks until the future settles, returning its error (nil on
// success).
func (f *Future) Wait() error {
	<-f.ch
	return f.err
}

// Done exposes the completion channel for select-based callers.
func (f *Future) Done() <-chan struct{} {
	return f.ch
}

// BundleEntry tracks one URL's fetch. Waiters accumulated before the
// entry leaves Pending are drained exactly once, in the order they
// were appended.
type BundleEntry struct {
	URL     string
	State   State
	TraceID string

	waiters []func(BoundRequire)
	future  *Future
	err     error
}

// BundleLoader is the runtime loader half of the system: it fetches
// additional chunks by URL, deduplicating concurrent requests for the
// same URL and releasing waiters once the underlying script settles.
type BundleLoader struct {
	mu       sync.Mutex
	entries  map[string]*BundleEntry
	injector ScriptInjector
	reg      *Registry
	log      *log.Logger
}

func newBundleLoader(reg *Registry, injector ScriptInjector) *BundleLoader {
	return &BundleLoader{
		entries:  make(map[string]*BundleEntry),
		injector: injector,
		reg:      reg,
		log:      log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "registry"}),
	}
}

// Ensure looks up or creates the BundleEntry for url. See spec §4.5
// for the exact state machine; in short:
//   - Loaded: callback (if any) fires immediately, resolved future
//     returned.
//   - Failed: terminal, no retry — same rejected future returned,
//     callback is NOT invoked (failure is future-only, spec §9 Open
//     Question: waiters get no synchronous notice on failure).
//   - Pending (existing or newly created): callback appended to
//     waiters, pending future returned.
func (l *BundleLoader) Ensure(url string, callback func(BoundRequire)) *Future {
	l.mu.Lock()
	entry, exists := l.entries[url]
	if exists {
		switch entry.State {
		case Loaded:
			future := entry.future
			l.mu.Unlock()
			if callback != nil {
				callback(l.reg.bound())
			}
			return future
		case Failed:
			future := entry.future
			l.mu.Unlock()
			return future
		default: // Pending
			if callback != nil {
				entry.waiters = append(entry.waiters, callback)
			}
			future := entry.future
			l.mu.Unlock()
			return future
		}
	}

	// First caller for this URL: record the entry before initiating
	// the fetch so a re-entrant second call during creation joins it.
	entry = &BundleEntry{
		URL:     url,
		State:   Pending,
		TraceID: uuid.NewString(),
		future:  newFuture(),
	}
	if callback != nil {
		entry.waiters = append(entry.waiters, callback)
	}
	l.entries[url] = entry
	l.mu.Unlock()

	l.log.Debug("ensuring bundle", "url", url, "trace", entry.TraceID)
	l.injector.Inject(url, func(err error) {
		l.settle(entry, err)
	})
	return entry.future
}

func (l *BundleLoader) settle(entry *BundleEntry, err error) {
	l.mu.Lock()
	if err != nil {
		entry.State = Failed
		entry.err = errBundleLoadFailed(entry.URL, err)
		entry.waiters = nil
		l.mu.Unlock()
		l.log.Warn("bundle failed to load", "url", entry.URL, "trace", entry.TraceID, "error", err)
		entry.future.settle(entry.err)
		return
	}

	entry.State = Loaded
	waiters := entry.waiters
	entry.waiters = nil
	l.mu.Unlock()

	l.log.Debug("bundle loaded", "url", entry.URL, "trace", entry.TraceID, "waiters", len(waiters))
	bound := l.reg.bound()
	for _, w := range waiters {
		w(bound)
	}
	entry.future.settle(nil)
}

// Snapshot returns the current state of every known bundle entry, for
// debugging and tests.
func (l *BundleLoader) Snapshot() map[string]State {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]State, len(l.entries))
	for url, e := range l.entries {
		out[url] = e.State
	}
	return out
}
