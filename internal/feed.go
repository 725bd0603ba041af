package internal

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Episode is one audio item of a podcast feed
type Episode struct {
	Title       string
	AudioURL    string
	Description string
	Published   *time.Time
}

// Request converts the episode into a transcription request
func (e Episode) Request() TranscriptionRequest {
	return TranscriptionRequest{
		Title:      e.Title,
		AudioURL:   e.AudioURL,
		Commentary: e.Description,
	}
}

// FeedResolver turns podcast RSS/Atom feeds into transcription requests
type FeedResolver struct {
	parser *gofeed.Parser
}

// NewFeedResolver creates a resolver. A zero timeout means no client-side limit.
func NewFeedResolver(timeout time.Duration) *FeedResolver {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "podscribe/1.0"
	return &FeedResolver{parser: parser}
}

// Episodes returns the feed's items that carry audio, newest first
func (r *FeedResolver) Episodes(ctx context.Context, feedURL string) ([]Episode, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	episodes := make([]Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		audioURL := audioEnclosure(item)
		if audioURL == "" {
			continue
		}
		episodes = append(episodes, Episode{
			Title:       strings.TrimSpace(item.Title),
			AudioURL:    audioURL,
			Description: plainText(item.Description),
			Published:   item.PublishedParsed,
		})
	}
	if len(episodes) == 0 {
		return nil, fmt.Errorf("no audio enclosures found in feed items")
	}

	slices.SortStableFunc(episodes, func(a, b Episode) int {
		switch {
		case a.Published == nil && b.Published == nil:
			return 0
		case a.Published == nil:
			return 1
		case b.Published == nil:
			return -1
		}
		return b.Published.Compare(*a.Published)
	})

	return episodes, nil
}

// Resolve picks episode n of the feed (0 is the newest) as a request
func (r *FeedResolver) Resolve(ctx context.Context, feedURL string, n int) (TranscriptionRequest, error) {
	episodes, err := r.Episodes(ctx, feedURL)
	if err != nil {
		return TranscriptionRequest{}, err
	}
	if n < 0 || n >= len(episodes) {
		return TranscriptionRequest{}, fmt.Errorf("episode %d out of range (feed has %d episodes)", n, len(episodes))
	}
	return episodes[n].Request(), nil
}

// audioEnclosure prefers an enclosure typed audio/*, then one with an audio
// file extension
func audioEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(strings.ToLower(enc.Type), "audio/") && enc.URL != "" {
			return enc.URL
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && IsLikelyAudioURL(enc.URL) {
			return enc.URL
		}
	}
	return ""
}

// plainText strips markup from feed descriptions
func plainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
