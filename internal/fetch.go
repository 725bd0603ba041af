package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// audioFileBase is the name of the single file a fetch creates in its directory
const audioFileBase = "podcast_audio"

// Fetcher retrieves remote audio into local storage
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, dir string, bar ProgressBar) (*AudioAsset, error)
}

// AudioFetcher downloads audio over HTTP with a streamed copy
type AudioFetcher struct {
	client *http.Client
	logger logrus.FieldLogger
}

// NewAudioFetcher creates a fetcher. A zero timeout means no client-side limit.
func NewAudioFetcher(timeout time.Duration, logger logrus.FieldLogger) *AudioFetcher {
	if logger == nil {
		logger = discardLogger()
	}
	return &AudioFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		logger: logger,
	}
}

// Fetch streams rawURL into a single file inside dir
func (f *AudioFetcher) Fetch(ctx context.Context, rawURL, dir string, bar ProgressBar) (*AudioAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", "podscribe/1.0")
	req.Header.Set("Accept", "audio/*, */*;q=0.8")

	f.logger.WithField("url", rawURL).Info("downloading audio")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrFetch, resp.StatusCode)
	}

	localPath := filepath.Join(dir, audioFileBase+audioExtension(rawURL))
	out, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: creating audio file: %v", ErrFetch, err)
	}

	var w io.Writer = out
	if bar != nil {
		if resp.ContentLength > 0 {
			bar.ChangeMax(int(resp.ContentLength))
		}
		w = io.MultiWriter(out, bar)
	}

	written, copyErr := io.Copy(w, resp.Body)
	closeErr := out.Close()
	if bar != nil {
		bar.Finish()
	}
	if copyErr != nil {
		return nil, fmt.Errorf("%w: writing audio file: %v", ErrFetch, copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: closing audio file: %v", ErrFetch, closeErr)
	}

	f.logger.WithFields(logrus.Fields{
		"path":  localPath,
		"bytes": written,
	}).Info("audio downloaded")

	return &AudioAsset{
		LocalPath:   localPath,
		ByteSize:    written,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// audioExtension keeps a known audio extension from the URL so ffmpeg can
// probe the container, defaulting to .mp3
func audioExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".mp3"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if slices.Contains(AudioExtensions, ext) {
		return ext
	}
	return ".mp3"
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
