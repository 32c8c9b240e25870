package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

func testKeylet(name string) keylet.Keylet {
	return keylet.SystemAccount(crypto.DeriveAuthority([]byte(name)))
}

func TestSandboxBuffersWrites(t *testing.T) {
	base := NewMemoryView()
	k := testKeylet("alice")
	require.NoError(t, base.Insert(k, []byte("v1")))

	sb := NewSandbox(base)
	require.NoError(t, sb.Update(k, []byte("v2")))

	got, err := sb.Read(k)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	// base is untouched until the change set is applied
	fromBase, err := base.Read(k)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), fromBase)

	require.NoError(t, ApplyChanges(base, sb.Changes()))
	fromBase, err = base.Read(k)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), fromBase)
}

func TestSandboxDiscardLeavesBaseUntouched(t *testing.T) {
	base := NewMemoryView()
	k1 := testKeylet("pool")
	k2 := testKeylet("user")
	require.NoError(t, base.Insert(k1, []byte("500")))

	sb := NewSandbox(base)
	require.NoError(t, sb.Update(k1, []byte("450")))
	require.NoError(t, sb.Insert(k2, []byte("50")))

	// drop the sandbox without applying: nothing persists
	v, err := base.Read(k1)
	require.NoError(t, err)
	require.Equal(t, []byte("500"), v)
	exists, err := base.Exists(k2)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSandboxInsertThenEraseIsNoChange(t *testing.T) {
	base := NewMemoryView()
	sb := NewSandbox(base)
	k := testKeylet("ephemeral")

	require.NoError(t, sb.Insert(k, []byte("x")))
	require.NoError(t, sb.Erase(k))
	require.Empty(t, sb.Changes())
}

func TestSandboxReadAfterErase(t *testing.T) {
	base := NewMemoryView()
	k := testKeylet("gone")
	require.NoError(t, base.Insert(k, []byte("x")))

	sb := NewSandbox(base)
	require.NoError(t, sb.Erase(k))

	_, err := sb.Read(k)
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := sb.Exists(k)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSandboxUpdateMissing(t *testing.T) {
	sb := NewSandbox(NewMemoryView())
	require.ErrorIs(t, sb.Update(testKeylet("nobody"), []byte("x")), ErrNotFound)
}

func TestSandboxInsertExisting(t *testing.T) {
	base := NewMemoryView()
	k := testKeylet("dup")
	require.NoError(t, base.Insert(k, []byte("x")))

	sb := NewSandbox(base)
	require.ErrorIs(t, sb.Insert(k, []byte("y")), ErrEntryExists)
}

func TestSandboxChangesTrackInsertedThenUpdated(t *testing.T) {
	sb := NewSandbox(NewMemoryView())
	k := testKeylet("fresh")
	require.NoError(t, sb.Insert(k, []byte("a")))
	require.NoError(t, sb.Update(k, []byte("b")))

	changes := sb.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, ActionInsert, changes[0].Action)
	require.Equal(t, []byte("b"), changes[0].Data)
}
