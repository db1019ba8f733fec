package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// GoogleRecognizer posts canonical audio to the Google speech API and
// parses its line-delimited JSON response
type GoogleRecognizer struct {
	URL    string
	Key    string
	Lang   string
	Client *http.Client
}

func NewGoogleRecognizer(endpoint, key string) *GoogleRecognizer {
	return &GoogleRecognizer{
		URL:    endpoint,
		Key:    key,
		Lang:   "en-US",
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

type recognizeResponse struct {
	Result []struct {
		Alternative []struct {
			Transcript string `json:"transcript"`
		} `json:"alternative"`
		Final bool `json:"final"`
	} `json:"result"`
}

func (g *GoogleRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	body, rate, err := rawSamples(wavPath)
	if err != nil {
		return "", &RequestError{Err: err}
	}

	q := url.Values{}
	q.Set("client", "chromium")
	q.Set("lang", g.Lang)
	if g.Key != "" {
		q.Set("key", g.Key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", fmt.Sprintf("audio/l16; rate=%v", rate))

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &RequestError{Err: fmt.Errorf("recognition service returned %v", resp.Status)}
	}

	// The service streams one JSON document per line, the first ones
	// are usually empty placeholders
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rr recognizeResponse
		if err := json.Unmarshal([]byte(line), &rr); err != nil {
			continue
		}

		for _, res := range rr.Result {
			for _, alt := range res.Alternative {
				if t := strings.TrimSpace(alt.Transcript); t != "" {
					return t, nil
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &RequestError{Err: err}
	}

	return "", ErrNoSpeech
}

// rawSamples decodes the canonical WAV into little-endian 16 bit PCM
// as the wire format expects
func rawSamples(wavPath string) ([]byte, int, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil {
		return nil, 0, fmt.Errorf("malformed wav file")
	}

	out := &bytes.Buffer{}
	out.Grow(len(buf.Data) * 2)

	for _, s := range buf.Data {
		if err := binary.Write(out, binary.LittleEndian, int16(s)); err != nil {
			return nil, 0, err
		}
	}

	return out.Bytes(), buf.Format.SampleRate, nil
}
