package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/storage"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := New(map[string]*domain.WhitelistedCreator{
		"addrA": {Address: "addrA", Activated: true, Name: "Alice", Image: "https://img/a.png", Twitter: "https://twitter.com/a"},
	})

	c, ok := reg.Lookup("addrA")
	require.True(t, ok)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, "https://twitter.com/a", c.Twitter)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_ProfilesFillGaps(t *testing.T) {
	reg := New(
		map[string]*domain.WhitelistedCreator{
			"addrA": {Address: "addrA", Activated: true},
			"addrB": {Address: "addrB", Name: "Chain Name"},
		},
		Profile{Address: "addrA", Name: "Alice", Twitter: "https://twitter.com/a"},
		Profile{Address: "addrB", Name: "Profile Name"},
		Profile{Address: "addrC", Name: "Carol"},
		Profile{Name: "no address"},
	)

	a, _ := reg.Lookup("addrA")
	assert.Equal(t, "Alice", a.Name)
	assert.True(t, a.Activated)

	b, _ := reg.Lookup("addrB")
	assert.Equal(t, "Chain Name", b.Name, "existing display fields win")

	c, ok := reg.Lookup("addrC")
	require.True(t, ok)
	assert.Equal(t, "Carol", c.Name)

	assert.Equal(t, 3, reg.Len())
}

func TestRegistry_DoesNotAliasInput(t *testing.T) {
	src := map[string]*domain.WhitelistedCreator{"a": {Address: "a", Name: "x"}}
	reg := New(src, Profile{Address: "a", Image: "img"})

	assert.Empty(t, src["a"].Image, "input record must not be mutated")

	src["a"].Name = "changed"
	c, _ := reg.Lookup("a")
	assert.Equal(t, "x", c.Name)
}

func TestFromSnapshot(t *testing.T) {
	snap := storage.EmptySnapshot()
	snap.Creators["a"] = &domain.WhitelistedCreator{Address: "a"}

	assert.Equal(t, 1, FromSnapshot(snap).Len())
	assert.Equal(t, 0, FromSnapshot(nil).Len())

	var nilReg *Registry
	_, ok := nilReg.Lookup("a")
	assert.False(t, ok)
}
