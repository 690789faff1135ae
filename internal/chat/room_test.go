package chat

import (
	"errors"
	"testing"
)

func TestRoomID_Commutative(t *testing.T) {
	ab, err := RoomID("alice", "bob")
	if err != nil {
		t.Fatalf("RoomID(alice, bob): %v", err)
	}
	ba, err := RoomID("bob", "alice")
	if err != nil {
		t.Fatalf("RoomID(bob, alice): %v", err)
	}

	if ab != ba {
		t.Fatalf("expected commutative derivation, got %q and %q", ab, ba)
	}
	if ab != "alice_bob" {
		t.Fatalf("expected alice_bob, got %q", ab)
	}
}

func TestRoomID_DistinctPairs(t *testing.T) {
	ab, err := RoomID("alice", "bob")
	if err != nil {
		t.Fatalf("RoomID(alice, bob): %v", err)
	}
	ac, err := RoomID("alice", "carol")
	if err != nil {
		t.Fatalf("RoomID(alice, carol): %v", err)
	}
	if ab == ac {
		t.Fatalf("distinct pairs must map to distinct rooms, both got %q", ab)
	}
}

func TestRoomID_RejectsInvalidIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{name: "empty first", a: "", b: "bob"},
		{name: "empty second", a: "alice", b: ""},
		{name: "delimiter in first", a: "ali_ce", b: "bob"},
		{name: "delimiter in second", a: "alice", b: "bo_b"},
		{name: "self chat", a: "alice", b: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RoomID(tt.a, tt.b); !errors.Is(err, ErrInvalidIdentifier) {
				t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
			}
		})
	}
}

func TestRoomIDAllowSelf(t *testing.T) {
	roomID, err := RoomIDAllowSelf("alice", "alice")
	if err != nil {
		t.Fatalf("expected self-chat room, got %v", err)
	}
	if roomID != "alice_alice" {
		t.Fatalf("expected alice_alice, got %q", roomID)
	}
}

func TestParseRoomID(t *testing.T) {
	a, b, err := ParseRoomID("alice_bob")
	if err != nil {
		t.Fatalf("ParseRoomID: %v", err)
	}
	if a != "alice" || b != "bob" {
		t.Fatalf("expected (alice, bob), got (%q, %q)", a, b)
	}

	invalid := []string{"", "alice", "alice_bob_carol", "_bob", "alice_", "bob_alice"}
	for _, roomID := range invalid {
		if _, _, err := ParseRoomID(roomID); !errors.Is(err, ErrInvalidRoomID) {
			t.Fatalf("ParseRoomID(%q): expected ErrInvalidRoomID, got %v", roomID, err)
		}
	}
}

func TestPeer(t *testing.T) {
	peer, err := Peer("alice_bob", "alice")
	if err != nil {
		t.Fatalf("Peer: %v", err)
	}
	if peer != "bob" {
		t.Fatalf("expected bob, got %q", peer)
	}

	peer, err = Peer("alice_bob", "bob")
	if err != nil {
		t.Fatalf("Peer: %v", err)
	}
	if peer != "alice" {
		t.Fatalf("expected alice, got %q", peer)
	}

	// Self-chat rooms resolve to self.
	peer, err = Peer("alice_alice", "alice")
	if err != nil {
		t.Fatalf("Peer: %v", err)
	}
	if peer != "alice" {
		t.Fatalf("expected alice, got %q", peer)
	}

	if _, err := Peer("alice_bob", "carol"); !errors.Is(err, ErrInvalidRoomID) {
		t.Fatalf("expected ErrInvalidRoomID for non-participant, got %v", err)
	}
}
