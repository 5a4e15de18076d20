package summary

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/sashabaranov/go-openai"
	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-summarizer/config"
)

func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIGenerator talks to any OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(cfg config.LLMConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
	if err != nil {
		return "", pkgerrors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", pkgerrors.New("chat completion returned no choices")
	}

	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}

// OpenAISpeaker synthesizes MP3 speech through the audio/speech endpoint.
type OpenAISpeaker struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAISpeaker(cfg config.TTSConfig) *OpenAISpeaker {
	return &OpenAISpeaker{
		client: newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
		voice:  cfg.Voice,
	}
}

// maxSpeechInput is the input limit of the speech endpoint, in characters.
const maxSpeechInput = 4096

// Speak synthesizes text in chunks the endpoint accepts. MP3 frames can be
// concatenated, so the chunk outputs are joined as-is.
func (sp *OpenAISpeaker) Speak(ctx context.Context, text string) ([]byte, error) {
	var audio bytes.Buffer
	for _, chunk := range splitForSpeech(text, maxSpeechInput) {
		if err := sp.speakChunk(ctx, chunk, &audio); err != nil {
			return nil, err
		}
	}
	if audio.Len() == 0 {
		return nil, pkgerrors.New("speech endpoint returned no audio")
	}
	return audio.Bytes(), nil
}

func (sp *OpenAISpeaker) speakChunk(ctx context.Context, text string, w io.Writer) error {
	resp, err := sp.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(sp.model),
		Input:          text,
		Voice:          openai.SpeechVoice(sp.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return pkgerrors.Wrap(err, "create speech")
	}
	defer resp.Close()

	if _, err := io.Copy(w, resp); err != nil {
		return pkgerrors.Wrap(err, "read speech")
	}
	return nil
}

// splitForSpeech breaks text into pieces of at most limit runes, preferring
// to cut after whitespace.
func splitForSpeech(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
