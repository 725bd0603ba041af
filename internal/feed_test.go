package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Go Time</title>
    <link>https://example.com</link>
    <item>
      <title>Older episode</title>
      <pubDate>Mon, 06 Jan 2025 10:00:00 +0000</pubDate>
      <description><![CDATA[<p>We talk <b>generics</b>.</p>]]></description>
      <enclosure url="https://cdn.example.com/older.mp3" length="100" type="audio/mpeg"/>
    </item>
    <item>
      <title>Video only</title>
      <pubDate>Tue, 07 Jan 2025 10:00:00 +0000</pubDate>
      <enclosure url="https://cdn.example.com/video.mp4" length="100" type="video/mp4"/>
    </item>
    <item>
      <title> Newest episode </title>
      <pubDate>Wed, 08 Jan 2025 10:00:00 +0000</pubDate>
      <description>Iterators
        and   range funcs</description>
      <enclosure url="https://cdn.example.com/newest?id=9" length="100" type="audio/x-m4a"/>
    </item>
    <item>
      <title>Undated bonus</title>
      <enclosure url="https://cdn.example.com/bonus.ogg" length="100" type=""/>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFeedResolverEpisodes(t *testing.T) {
	server := newFeedServer(t, testFeed)

	episodes, err := NewFeedResolver(5*time.Second).Episodes(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Episodes failed: %v", err)
	}

	if len(episodes) != 3 {
		t.Fatalf("Expected 3 audio episodes, got %d", len(episodes))
	}

	wantTitles := []string{"Newest episode", "Older episode", "Undated bonus"}
	for i, want := range wantTitles {
		if episodes[i].Title != want {
			t.Errorf("Episode %d: expected %q, got %q", i, want, episodes[i].Title)
		}
	}

	if episodes[0].AudioURL != "https://cdn.example.com/newest?id=9" {
		t.Errorf("Expected the audio/* enclosure, got %s", episodes[0].AudioURL)
	}
	if episodes[0].Description != "Iterators and range funcs" {
		t.Errorf("Expected collapsed whitespace, got %q", episodes[0].Description)
	}
	if episodes[1].Description != "We talk generics." {
		t.Errorf("Expected markup to be stripped, got %q", episodes[1].Description)
	}
	if episodes[2].Published != nil {
		t.Errorf("Expected undated episode to have no publish date")
	}
	if episodes[2].AudioURL != "https://cdn.example.com/bonus.ogg" {
		t.Errorf("Expected the audio extension fallback, got %s", episodes[2].AudioURL)
	}
}

func TestFeedResolverResolve(t *testing.T) {
	server := newFeedServer(t, testFeed)
	resolver := NewFeedResolver(5 * time.Second)

	req, err := resolver.Resolve(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := TranscriptionRequest{
		Title:      "Older episode",
		AudioURL:   "https://cdn.example.com/older.mp3",
		Commentary: "We talk generics.",
	}
	if req != want {
		t.Errorf("Expected %+v, got %+v", want, req)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Expected a valid request, got %v", err)
	}

	for _, n := range []int{-1, 3} {
		if _, err := resolver.Resolve(context.Background(), server.URL, n); err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Errorf("Expected out of range error for %d, got %v", n, err)
		}
	}
}

func TestFeedResolverErrors(t *testing.T) {
	noAudio := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>
<item><title>text only</title></item></channel></rss>`

	tests := []struct {
		name string
		body string
	}{
		{"not a feed", "<html><body>hello</body></html>"},
		{"no audio", noAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFeedServer(t, tt.body)
			if _, err := NewFeedResolver(5*time.Second).Episodes(context.Background(), server.URL); err == nil {
				t.Errorf("Expected an error")
			}
		})
	}
}

func TestFormatEpisodes(t *testing.T) {
	published := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	got := FormatEpisodes([]Episode{
		{Title: "New", AudioURL: "https://x/new.mp3", Published: &published},
		{Title: "Bonus", AudioURL: "https://x/bonus.mp3"},
	})

	want := "0. New\n   Published: 2025-01-08\n   Audio: https://x/new.mp3\n" +
		"1. Bonus\n   Audio: https://x/bonus.mp3\n"
	if got != want {
		t.Errorf("Unexpected listing:\n%s", got)
	}
}
