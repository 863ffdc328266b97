package channel

import (
	"errors"
	"testing"

	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/wire"
)

var testSpec = Spec{
	List1:     list.SwitchList1Layout,
	List3:     list.SwitchList3Layout,
	PeerCount: 2,
}

func newTestChannel(t *testing.T) (*Channel, *list.Memory) {
	t.Helper()
	store := list.NewMemory(8 + testSpec.Size())
	c := New(testSpec)
	c.Setup(store, 1, 8)
	if err := c.FirstInit(); err != nil {
		t.Fatalf("FirstInit failed: %v", err)
	}
	return c, store
}

func TestSpecSize(t *testing.T) {
	want := list.SwitchList1Layout.Size() + 2*wire.PeerSize + 2*list.SwitchList3Layout.Size()
	if testSpec.Size() != want {
		t.Errorf("Size() = %d, want %d", testSpec.Size(), want)
	}

	withList4 := testSpec
	withList4.List4 = list.SwitchList1Layout
	if withList4.Size() != want+2*list.SwitchList1Layout.Size() {
		t.Errorf("Size() with list4 = %d", withList4.Size())
	}
}

func TestNotSetUp(t *testing.T) {
	c := New(testSpec)
	if c.List1().Valid() {
		t.Error("List1 before Setup should be invalid")
	}
	if _, err := c.AddPeer(wire.Peer{ID: wire.NodeID{1, 2, 3}, Channel: 1}); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("err = %v, want ErrNotSetUp", err)
	}
	if err := c.FirstInit(); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("err = %v, want ErrNotSetUp", err)
	}
}

func TestFirstInit(t *testing.T) {
	c, _ := newTestChannel(t)

	if c.Number() != 1 || c.Address() != 8 {
		t.Errorf("number/address = %d/%d", c.Number(), c.Address())
	}
	if v, ok := c.List1().Register(list.RegTransmitTryMax); !ok || v != 6 {
		t.Errorf("list1 transmitTryMax = %d, %v", v, ok)
	}
	if len(c.Peers()) != 0 {
		t.Errorf("peers = %v, want none", c.Peers())
	}
	if !c.HasList3() || c.HasList4() {
		t.Error("list support flags wrong")
	}
}

func TestPeerTable(t *testing.T) {
	c, _ := newTestChannel(t)
	a := wire.Peer{ID: wire.NodeID{1, 2, 3}, Channel: 1}
	b := wire.Peer{ID: wire.NodeID{1, 2, 3}, Channel: 2}
	x := wire.Peer{ID: wire.NodeID{9, 9, 9}, Channel: 1}

	var added []wire.Peer
	var removed []wire.Peer
	c.OnPeerAdded(func(_ int, p wire.Peer) { added = append(added, p) })
	c.OnPeerRemoved(func(p wire.Peer) { removed = append(removed, p) })

	t.Run("AddUntilFull", func(t *testing.T) {
		if slot, err := c.AddPeer(a); err != nil || slot != 0 {
			t.Fatalf("AddPeer(a) = %d, %v", slot, err)
		}
		if slot, err := c.AddPeer(b); err != nil || slot != 1 {
			t.Fatalf("AddPeer(b) = %d, %v", slot, err)
		}
		if _, err := c.AddPeer(x); !errors.Is(err, ErrPeerTableFull) {
			t.Errorf("err = %v, want ErrPeerTableFull", err)
		}
		if len(added) != 2 {
			t.Errorf("added callbacks = %d, want 2", len(added))
		}
	})

	t.Run("AddExistingKeepsSlot", func(t *testing.T) {
		if slot, err := c.AddPeer(b); err != nil || slot != 1 {
			t.Errorf("AddPeer(b) again = %d, %v", slot, err)
		}
		if len(added) != 2 {
			t.Error("re-adding a known peer should not fire the callback")
		}
	})

	t.Run("InvalidPeer", func(t *testing.T) {
		if _, err := c.AddPeer(wire.Peer{}); !errors.Is(err, ErrInvalidPeer) {
			t.Errorf("err = %v, want ErrInvalidPeer", err)
		}
		if _, ok := c.FindPeer(wire.Peer{}); ok {
			t.Error("zero peer must never be found")
		}
	})

	t.Run("DeleteAndReuse", func(t *testing.T) {
		if err := c.DeletePeer(a); err != nil {
			t.Fatalf("DeletePeer failed: %v", err)
		}
		if err := c.DeletePeer(a); !errors.Is(err, ErrPeerNotFound) {
			t.Errorf("err = %v, want ErrPeerNotFound", err)
		}
		if slot, err := c.AddPeer(x); err != nil || slot != 0 {
			t.Errorf("AddPeer(x) = %d, %v, want slot 0", slot, err)
		}
		peers := c.Peers()
		if len(peers) != 2 || peers[0] != x || peers[1] != b {
			t.Errorf("peers = %v", peers)
		}
		if len(removed) != 1 || removed[0] != a {
			t.Errorf("removed = %v", removed)
		}
	})
}

func TestPeerLists(t *testing.T) {
	c, _ := newTestChannel(t)
	a := wire.Peer{ID: wire.NodeID{1, 2, 3}, Channel: 1}
	b := wire.Peer{ID: wire.NodeID{4, 5, 6}, Channel: 1}

	if c.List3(a).Valid() {
		t.Error("List3 of unknown peer should be invalid")
	}
	if c.List4(a).Valid() {
		t.Error("List4 without List4 support should be invalid")
	}

	_, _ = c.AddPeer(a)
	_, _ = c.AddPeer(b)
	la, lb := c.List3(a), c.List3(b)
	if !la.Valid() || !lb.Valid() {
		t.Fatal("List3 of known peers should be valid")
	}
	if la.Equal(lb) {
		t.Error("peers must have distinct List3 addresses")
	}

	if err := la.SetRegister(list.RegActionType, 0); err != nil {
		t.Fatalf("SetRegister failed: %v", err)
	}
	if v, _ := lb.Register(list.RegActionType); v != uint8(list.ActionJumpToTarget) {
		t.Errorf("write to peer a leaked into peer b: %d", v)
	}
	if v, _ := c.List1().Register(list.RegTransmitTryMax); v != 6 {
		t.Error("List3 write clobbered List1")
	}
}

func TestChangedFlag(t *testing.T) {
	c, _ := newTestChannel(t)
	if c.Changed() {
		t.Error("new channel should not be changed")
	}
	c.SetChanged(true)
	if !c.Changed() {
		t.Error("SetChanged(true) not applied")
	}
	c.SetChanged(false)
	if c.Changed() {
		t.Error("SetChanged(false) not applied")
	}
}
