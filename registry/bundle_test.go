package registry_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupyter/extension-builder/registry"
)

// controlledInjector lets a test hold a fetch open until it chooses
// to fire its completion, so it can assert on waiter ordering before
// and after settlement.
type controlledInjector struct {
	mu      sync.Mutex
	pending map[string]func(error)
	injects int
}

func (c *controlledInjector) Inject(url string, onDone func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = make(map[string]func(error))
	}
	c.pending[url] = onDone
	c.injects++
}

func (c *controlledInjector) fire(url string, err error) {
	c.mu.Lock()
	onDone := c.pending[url]
	delete(c.pending, url)
	c.mu.Unlock()
	if onDone != nil {
		onDone(err)
	}
}

func (c *controlledInjector) injectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.injects
}

// S4 — bundle dedup.
func TestEnsureBundleDedupAndFIFOWaiters(t *testing.T) {
	t.Parallel()
	inj := &controlledInjector{}
	r := registry.New(inj)

	var order []string
	futureA := r.EnsureBundle("x.js", func(req registry.BoundRequire) { order = append(order, "a") })
	futureB := r.EnsureBundle("x.js", func(req registry.BoundRequire) { order = append(order, "b") })

	assert.Equal(t, 1, inj.injectCount(), "at most one script element is ever injected per url")

	inj.fire("x.js", nil)

	assert.NoError(t, futureA.Wait())
	assert.NoError(t, futureB.Wait())
	assert.Equal(t, []string{"a", "b"}, order, "waiters fire in append order")
}

func TestEnsureBundleAlreadyLoadedInvokesSynchronously(t *testing.T) {
	t.Parallel()
	inj := &controlledInjector{}
	r := registry.New(inj)

	r.EnsureBundle("y.js", nil)
	inj.fire("y.js", nil)

	called := false
	future := r.EnsureBundle("y.js", func(req registry.BoundRequire) { called = true })
	assert.True(t, called)
	assert.NoError(t, future.Wait())
	assert.Equal(t, 1, inj.injectCount())
}

func TestEnsureBundleFailureRejectsFutureWithoutInvokingWaiters(t *testing.T) {
	t.Parallel()
	inj := &controlledInjector{}
	r := registry.New(inj)

	called := false
	future := r.EnsureBundle("broken.js", func(req registry.BoundRequire) { called = true })
	inj.fire("broken.js", errors.New("network down"))

	err := future.Wait()
	require.Error(t, err)
	assert.False(t, called, "waiters do not receive a synchronous invocation on failure")
}

func TestEnsureBundleFailureIsTerminalNoRetry(t *testing.T) {
	t.Parallel()
	inj := &controlledInjector{}
	r := registry.New(inj)

	first := r.EnsureBundle("broken.js", nil)
	inj.fire("broken.js", errors.New("network down"))
	require.Error(t, first.Wait())

	second := r.EnsureBundle("broken.js", nil)
	assert.Equal(t, 1, inj.injectCount(), "a failed bundle must not be refetched")
	assert.Same(t, first, second, "repeated calls for a failed url return the same rejected future")
}

func TestEnsureBundleWaiterCanReenter(t *testing.T) {
	t.Parallel()
	inj := &controlledInjector{}
	r := registry.New(inj)

	var reentrantResult *registry.Future
	future := r.EnsureBundle("outer.js", func(req registry.BoundRequire) {
		reentrantResult = r.EnsureBundle("outer.js", nil)
	})
	inj.fire("outer.js", nil)

	require.NoError(t, future.Wait())
	require.NotNil(t, reentrantResult)
	assert.NoError(t, reentrantResult.Wait())
}

func TestNopInjectorFailsImmediately(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	future := r.EnsureBundle("anything.js", nil)
	require.Error(t, future.Wait())
}
