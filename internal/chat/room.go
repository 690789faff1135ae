package chat

import (
	"fmt"
	"strings"
)

// roomDelimiter joins the two participant identifiers of a room. Usernames
// are validated to never contain it, so the pair -> room mapping stays 1:1.
const roomDelimiter = "_"

// RoomID derives the canonical room identifier for the unordered pair of
// participants. RoomID(a, b) == RoomID(b, a) for all valid inputs.
func RoomID(a, b string) (string, error) {
	return roomID(a, b, false)
}

// RoomIDAllowSelf is RoomID but permits a == b (self-chat).
func RoomIDAllowSelf(a, b string) (string, error) {
	return roomID(a, b, true)
}

func roomID(a, b string, allowSelf bool) (string, error) {
	if err := ValidateParticipantID(a); err != nil {
		return "", err
	}
	if err := ValidateParticipantID(b); err != nil {
		return "", err
	}
	if a == b && !allowSelf {
		return "", fmt.Errorf("%w: cannot open a room with yourself", ErrInvalidIdentifier)
	}
	if a > b {
		a, b = b, a
	}
	return a + roomDelimiter + b, nil
}

// ValidateParticipantID checks that id is usable as a room participant.
func ValidateParticipantID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty participant id", ErrInvalidIdentifier)
	}
	if strings.Contains(id, roomDelimiter) {
		return fmt.Errorf("%w: participant id %q contains %q", ErrInvalidIdentifier, id, roomDelimiter)
	}
	return nil
}

// ParseRoomID splits a room identifier back into its two participants.
func ParseRoomID(roomID string) (a, b string, err error) {
	parts := strings.Split(roomID, roomDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}
	if parts[0] > parts[1] {
		return "", "", fmt.Errorf("%w: %q is not in canonical order", ErrInvalidRoomID, roomID)
	}
	return parts[0], parts[1], nil
}

// Peer returns the other participant of the room relative to self.
// For a self-chat room it returns self.
func Peer(roomID, self string) (string, error) {
	a, b, err := ParseRoomID(roomID)
	if err != nil {
		return "", err
	}
	switch self {
	case a:
		return b, nil
	case b:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q is not a participant of %q", ErrInvalidRoomID, self, roomID)
	}
}
