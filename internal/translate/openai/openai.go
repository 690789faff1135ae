// Package openai implements the voice-translation pipeline on the OpenAI
// API: Whisper transcription, chat-completion translation, and speech
// synthesis of the translated text. The API key is read from the
// OPENAI_API_KEY environment variable by the SDK.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"

	"github.com/linguachat/linguachat-server/internal/translate"
)

// Translator translates voice recordings via the OpenAI API.
type Translator struct {
	client openai.Client
}

// New constructs a Translator using ambient SDK configuration.
func New() *Translator {
	return &Translator{
		client: openai.NewClient(),
	}
}

var _ translate.Translator = (*Translator)(nil)

// Translate transcribes the recording, translates the transcript into
// targetLang, and synthesizes the translated text as WAV audio. Each stage
// feeds the next; any failure aborts with an error so the caller can fall
// back to the original recording.
func (t *Translator) Translate(ctx context.Context, audio []byte, contentType, targetLang string) (*translate.Result, error) {
	transcript, err := t.transcribe(ctx, audio, contentType)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcribe: empty transcript")
	}

	translated, err := t.translateText(ctx, transcript, targetLang)
	if err != nil {
		return nil, fmt.Errorf("translate text: %w", err)
	}

	speech, err := t.synthesize(ctx, translated)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	return &translate.Result{
		Transcript:  translated,
		Audio:       speech,
		ContentType: "audio/wav",
	}, nil
}

func (t *Translator) transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	transcription, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(audio), fileNameFor(contentType), contentType),
	})
	if err != nil {
		return "", err
	}
	return transcription.Text, nil
}

func (t *Translator) translateText(ctx context.Context, text, targetLang string) (string, error) {
	completion, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(
				"Translate the user's message into the language with ISO 639-1 code %q. Reply with the translation only.",
				targetLang)),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (t *Translator) synthesize(ctx context.Context, text string) ([]byte, error) {
	res, err := t.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoiceAlloy,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

// fileNameFor gives the upload a file name whose extension the API accepts.
func fileNameFor(contentType string) string {
	switch contentType {
	case "audio/wav", "audio/x-wav":
		return "input.wav"
	case "audio/mpeg", "audio/mp3":
		return "input.mp3"
	case "audio/ogg":
		return "input.ogg"
	default:
		return "input.webm"
	}
}
