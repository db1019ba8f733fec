package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// The upstream endpoint rejects long queries, so text is synthesized
// in chunks and the MP3 frames concatenated
const maxChunkRunes = 200

// GoogleSynthesizer drives the Google Translate speech endpoint. The
// accent is selected by the regional top level domain.
type GoogleSynthesizer struct {
	Client *http.Client
}

func NewGoogleSynthesizer() *GoogleSynthesizer {
	return &GoogleSynthesizer{
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string, voice VoiceConfig) ([]byte, error) {
	chunks := chunkText(text, maxChunkRunes)

	var out []byte
	for i, chunk := range chunks {
		audio, err := g.fetchChunk(ctx, chunk, voice, i, len(chunks))
		if err != nil {
			return nil, err
		}

		out = append(out, audio...)
	}

	return out, nil
}

func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk string, voice VoiceConfig, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", voice.Lang)
	q.Set("q", chunk)
	q.Set("idx", fmt.Sprint(idx))
	q.Set("total", fmt.Sprint(total))
	q.Set("textlen", fmt.Sprint(utf8.RuneCountInString(chunk)))

	u := fmt.Sprintf("https://translate.google.%v/translate_tts?%v", voice.TLD, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech endpoint unreachable, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech endpoint returned %v", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// chunkText splits on whitespace close to the rune limit, falling
// back to a hard cut for pathological unbroken input
func chunkText(text string, limit int) []string {
	var chunks []string
	var b strings.Builder
	var count int

	for _, word := range strings.Fields(text) {
		wlen := utf8.RuneCountInString(word)

		if count > 0 && count+wlen+1 > limit {
			chunks = append(chunks, b.String())
			b.Reset()
			count = 0
		}

		for wlen > limit {
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
			wlen = utf8.RuneCountInString(word)
		}

		if count > 0 {
			b.WriteByte(' ')
			count++
		}
		b.WriteString(word)
		count += wlen
	}

	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}

	return chunks
}
