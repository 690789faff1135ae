// Package translate defines the voice-translation collaborator contract.
// Translation is best-effort: callers fall back to the original recording
// and an empty transcript when it fails, and the message still sends.
package translate

import "context"

// Result is a finished translation.
type Result struct {
	// Transcript is the recognized (and translated) text of the recording.
	Transcript string
	// Audio holds synthesized speech in the target language. Empty means
	// the caller should keep the original recording.
	Audio []byte
	// ContentType describes Audio when present.
	ContentType string
}

// Translator turns a voice recording into a transcript and, when possible,
// translated audio in the target language.
type Translator interface {
	Translate(ctx context.Context, audio []byte, contentType, targetLang string) (*Result, error)
}
