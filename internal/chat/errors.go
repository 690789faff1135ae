package chat

import "errors"

// Error codes exposed to transports.
const (
	ErrCodeInvalidIdentifier = "invalid_identifier"
	ErrCodeInvalidRoomID     = "invalid_room_id"
	ErrCodeMissingField      = "missing_field"
	ErrCodeUnsupportedKind   = "unsupported_kind"
)

var (
	// ErrInvalidIdentifier rejects empty, delimiter-bearing or (by default)
	// equal participant identifiers.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrInvalidRoomID rejects malformed room identifiers.
	ErrInvalidRoomID = errors.New("invalid room id")
	// ErrMissingField rejects drafts lacking a required field.
	ErrMissingField = errors.New("missing field")
	// ErrUnsupportedKind rejects drafts with an unrecognized message kind.
	ErrUnsupportedKind = errors.New("unsupported message kind")
)

// Code maps a chat error to its stable code, or "" for unknown errors.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		return ErrCodeInvalidIdentifier
	case errors.Is(err, ErrInvalidRoomID):
		return ErrCodeInvalidRoomID
	case errors.Is(err, ErrMissingField):
		return ErrCodeMissingField
	case errors.Is(err, ErrUnsupportedKind):
		return ErrCodeUnsupportedKind
	default:
		return ""
	}
}
