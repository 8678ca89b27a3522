package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// Verdict is the outcome of a lyrics moderation pass.
type Verdict struct {
	Appropriate bool
	Reason      string
}

// Intelligence transcribes uploaded audio and moderates the transcript.
type Intelligence interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	Moderate(ctx context.Context, lyrics string) (Verdict, error)
}

type intelligence struct {
	client *goopenai.Client
}

func New(apiKey string) Intelligence {
	return &intelligence{client: goopenai.NewClient(apiKey)}
}

func (i *intelligence) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	resp, err := i.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    goopenai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe %q: %w", filename, err)
	}

	return resp.Text, nil
}

const moderationPrompt = `You review song lyrics before publication.
Reply with exactly one line: "APPROPRIATE" if the lyrics are acceptable,
or "INAPPROPRIATE: <short reason>" if they contain hate speech, explicit
calls to violence, or sexual content involving minors.`

func (i *intelligence) Moderate(ctx context.Context, lyrics string) (Verdict, error) {
	resp, err := i.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: goopenai.GPT4oMini,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: moderationPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: lyrics},
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("moderate lyrics: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("moderate lyrics: empty response")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)

	if reason, found := strings.CutPrefix(answer, "INAPPROPRIATE"); found {
		return Verdict{
			Appropriate: false,
			Reason:      strings.TrimSpace(strings.TrimPrefix(reason, ":")),
		}, nil
	}

	return Verdict{Appropriate: true}, nil
}
