package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/identity"
)

var testKey = []byte("bridge-key-0123456789abcdef")

func TestDeriveSecret_Deterministic(t *testing.T) {
	b1, err := New(testKey, identity.NewMemory())
	require.NoError(t, err)
	b2, err := New(append([]byte(nil), testKey...), identity.NewMemory())
	require.NoError(t, err)

	s1, err := b1.DeriveSecret("a@x.com")
	require.NoError(t, err)
	s2, err := b2.DeriveSecret("  A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Len(t, s1, 32)

	other, _ := b1.DeriveSecret("b@x.com")
	assert.NotEqual(t, s1, other)

	b3, _ := New([]byte("another-bridge-key-000000"), identity.NewMemory())
	s3, _ := b3.DeriveSecret("a@x.com")
	assert.NotEqual(t, s1, s3)

	_, err = b1.DeriveSecret("   ")
	assert.ErrorIs(t, err, ErrEmptyEmail)
}

func TestNew_KeyValidation(t *testing.T) {
	_, err := New(nil, identity.NewMemory())
	assert.ErrorIs(t, err, ErrNoKey)
	_, err = New([]byte("short"), identity.NewMemory())
	assert.Error(t, err)
}

func TestEnsurePrincipal_CreateThenReuse(t *testing.T) {
	mem := identity.NewMemory()
	b, _ := New(testKey, mem)
	ctx := context.Background()

	r1, err := b.EnsurePrincipal(ctx, "a@x.com", "A")
	require.NoError(t, err)
	assert.True(t, r1.Created)

	r2, err := b.EnsurePrincipal(ctx, "a@x.com", "A")
	require.NoError(t, err)
	assert.False(t, r2.Created)
	assert.Equal(t, r1.PrincipalID, r2.PrincipalID)
	assert.Equal(t, r1.Secret, r2.Secret)

	// a restarted process with the same key lands on the same principal
	restarted, _ := New(testKey, mem)
	r3, err := restarted.EnsurePrincipal(ctx, "A@x.com", "A")
	require.NoError(t, err)
	assert.Equal(t, r1.PrincipalID, r3.PrincipalID)
	assert.Equal(t, r1.Secret, r3.Secret)
}

func TestEnsurePrincipal_ConcurrentCallersConverge(t *testing.T) {
	mem := identity.NewMemory()
	b, _ := New(testKey, mem)

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := b.EnsurePrincipal(context.Background(), "race@x.com", "R")
			if err == nil {
				ids[i] = r.PrincipalID
			}
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		require.NotEmpty(t, ids[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, mem.Len())
}

// racyBackend reports "not found" on the first sign-in and "exists" on the
// first sign-up, as if another caller created the principal in between.
type racyBackend struct {
	inner   *identity.Memory
	signIns int32
	signUps int32
}

func (r *racyBackend) SignIn(ctx context.Context, email, secret string) (*identity.Principal, error) {
	if atomic.AddInt32(&r.signIns, 1) == 1 {
		return nil, identity.ErrNotFound
	}
	return r.inner.SignIn(ctx, email, secret)
}

func (r *racyBackend) SignUp(ctx context.Context, email, secret, name string) (*identity.Principal, error) {
	atomic.AddInt32(&r.signUps, 1)
	if _, err := r.inner.SignUp(ctx, email, secret, name); err != nil {
		return nil, err
	}
	return nil, identity.ErrAlreadyExists
}

func TestEnsurePrincipal_CreateConflictFallsBackToSignIn(t *testing.T) {
	rb := &racyBackend{inner: identity.NewMemory()}
	b, _ := New(testKey, rb)

	r, err := b.EnsurePrincipal(context.Background(), "a@x.com", "A")
	require.NoError(t, err)
	assert.False(t, r.Created)
	assert.NotEmpty(t, r.PrincipalID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&rb.signIns))
	assert.Equal(t, int32(1), atomic.LoadInt32(&rb.signUps))
}

type brokenBackend struct{ err error }

func (b brokenBackend) SignIn(context.Context, string, string) (*identity.Principal, error) {
	return nil, b.err
}

func (b brokenBackend) SignUp(context.Context, string, string, string) (*identity.Principal, error) {
	return nil, identity.ErrAlreadyExists
}

func TestEnsurePrincipal_FatalErrorsPropagate(t *testing.T) {
	down := errors.New("connection refused")
	b, _ := New(testKey, brokenBackend{err: down})
	_, err := b.EnsurePrincipal(context.Background(), "a@x.com", "A")
	assert.ErrorIs(t, err, down)

	// wrong password for an existing account is not "not found"
	b, _ = New(testKey, brokenBackend{err: identity.ErrInvalidCredentials})
	_, err = b.EnsurePrincipal(context.Background(), "a@x.com", "A")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

type alwaysConflict struct{}

func (alwaysConflict) SignIn(context.Context, string, string) (*identity.Principal, error) {
	return nil, identity.ErrNotFound
}

func (alwaysConflict) SignUp(context.Context, string, string, string) (*identity.Principal, error) {
	return nil, identity.ErrAlreadyExists
}

func TestEnsurePrincipal_BoundedLoop(t *testing.T) {
	b, _ := New(testKey, alwaysConflict{})
	_, err := b.EnsurePrincipal(context.Background(), "a@x.com", "A")
	assert.ErrorIs(t, err, ErrUnresolved)
}
