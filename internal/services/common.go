package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/listing-studio/engine/internal/imaging"
	appErr "github.com/listing-studio/engine/pkg/errors"
)

// ParseOutcome tags how a structured model reply was interpreted.
type ParseOutcome string

const (
	OutcomeParsed   ParseOutcome = "parsed"
	OutcomeFallback ParseOutcome = "fallback"
)

// ModelSet names the models used per operation.
type ModelSet struct {
	Text             string
	Image            string
	Landing          string
	Stream           string
	LandingMaxTokens int
	StreamMaxTokens  int
}

func notFound(entity string) error {
	return appErr.New(appErr.CodeNotFound, entity+" not found")
}

var jsonFence = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// decodeModelJSON parses a JSON reply, tolerating a surrounding markdown fence.
func decodeModelJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	return json.Unmarshal([]byte(text), v)
}

// ImageFetcher loads image bytes referenced by a model reply.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type httpFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher fetches http(s) and base64 data URLs, refusing bodies above maxBytes.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) ImageFetcher {
	return &httpFetcher{client: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if imaging.IsDataURL(url) {
		_, data, err := imaging.DecodeDataURL(url)
		return data, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid image url")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "fetch image failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, appErr.New(appErr.CodeUnavailable, "fetch image failed: "+resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "read image failed")
	}
	if int64(len(data)) > f.maxBytes {
		return nil, appErr.New(appErr.CodeInvalid, "image too large")
	}
	return data, nil
}
