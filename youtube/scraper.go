// Package youtube scrapes video metadata and transcripts into markdown
// documents, using YouTube's innertube player endpoint and timedtext
// captions.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/scrape"
)

// DefaultBaseURL is the production innertube endpoint host.
const DefaultBaseURL = "https://www.youtube.com"

// playerClientVersion identifies the innertube client. The ANDROID client
// returns unthrottled metadata without requiring an API key token dance.
const (
	playerClientName    = "ANDROID"
	playerClientVersion = "19.09.37"
)

// Ensure Scraper implements scrapemd.Scraper at compile time.
var _ scrapemd.Scraper = (*Scraper)(nil)

// Scraper turns a YouTube watch URL into a markdown document with the
// video's title, description and transcript. Metadata failures degrade to
// a document titled by video ID; a missing transcript is not an error.
type Scraper struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the innertube endpoint host.
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithLogger sets the logger for degraded-path warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// NewScraper creates a YouTube scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractVideoID extracts the video ID from a YouTube URL. Both
// youtu.be/<id> and youtube.com/watch?v=<id> forms are recognized.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", scrapemd.Errorf(scrapemd.EINVALID, "could not extract video ID from URL: %s", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}

	return "", scrapemd.Errorf(scrapemd.EINVALID, "could not extract video ID from URL: %s", rawURL)
}

// metadata is what the player endpoint yields for a video.
type metadata struct {
	Title       string
	Author      string
	Description string
	Duration    string
	UploadDate  string
	CaptionURL  string
}

// Scrape fetches metadata and transcript for the video at url.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*scrapemd.Document, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	meta, err := s.fetchMetadata(ctx, videoID)
	if err != nil {
		// Degrade the way a missing transcript does: the document still
		// identifies the video, titled by its ID.
		s.warn("video metadata unavailable", "video_id", videoID, "err", err)
		meta = &metadata{Title: videoID}
	}

	transcript := ""
	if meta.CaptionURL != "" {
		transcript, err = s.fetchTranscript(ctx, meta.CaptionURL)
		if err != nil {
			s.warn("transcript unavailable", "video_id", videoID, "err", err)
			transcript = ""
		}
	}

	md := formatMarkdown(rawURL, meta, transcript)

	return &scrapemd.Document{
		URL:         rawURL,
		Title:       meta.Title,
		Source:      scrapemd.SourceYouTube,
		Markdown:    md,
		ContentHash: scrape.ContentHash(md),
		FetchedAt:   s.now(),
		Extra: map[string]string{
			"video_id":    videoID,
			"duration":    meta.Duration,
			"upload_date": meta.UploadDate,
		},
	}, nil
}

// playerRequest is the innertube player call body.
type playerRequest struct {
	VideoID string        `json:"videoId"`
	Context playerContext `json:"context"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// playerResponse is the subset of the player reply we consume.
type playerResponse struct {
	VideoDetails struct {
		Title            string `json:"title"`
		Author           string `json:"author"`
		ShortDescription string `json:"shortDescription"`
		LengthSeconds    string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Microformat struct {
		PlayerMicroformatRenderer struct {
			UploadDate string `json:"uploadDate"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

func (s *Scraper) fetchMetadata(ctx context.Context, videoID string) (*metadata, error) {
	body, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{
			Client: playerClient{
				ClientName:    playerClientName,
				ClientVersion: playerClientVersion,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/youtubei/v1/player", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, scrapemd.Errorf(scrapemd.EUNAVAILABLE, "player request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, scrapemd.Errorf(scrapemd.EUNAVAILABLE, "player request returned status %d", resp.StatusCode)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, scrapemd.Errorf(scrapemd.EINTERNAL, "malformed player response: %v", err)
	}

	meta := &metadata{
		Title:       pr.VideoDetails.Title,
		Author:      pr.VideoDetails.Author,
		Description: pr.VideoDetails.ShortDescription,
		UploadDate:  pr.Microformat.PlayerMicroformatRenderer.UploadDate,
		CaptionURL:  pickCaptionTrack(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks),
	}
	if meta.Title == "" {
		meta.Title = videoID
	}
	if secs, err := strconv.Atoi(pr.VideoDetails.LengthSeconds); err == nil && secs > 0 {
		meta.Duration = FormatDuration(secs)
	}
	return meta, nil
}

// pickCaptionTrack prefers English captions, then falls back to the first
// available track.
func pickCaptionTrack(tracks []captionTrack) string {
	for _, t := range tracks {
		if t.LanguageCode == "en" || strings.HasPrefix(t.LanguageCode, "en-") {
			return t.BaseURL
		}
	}
	if len(tracks) > 0 {
		return tracks[0].BaseURL
	}
	return ""
}

// fetchTranscript downloads a timedtext caption document and joins its
// cue lines with newlines.
func (s *Scraper) fetchTranscript(ctx context.Context, captionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", scrapemd.Errorf(scrapemd.EUNAVAILABLE, "caption request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", scrapemd.Errorf(scrapemd.EUNAVAILABLE, "caption request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return ParseTimedText(data)
}

// ParseTimedText extracts cue text from a timedtext XML document. Cues
// are HTML-entity encoded inside the XML, so they are unescaped twice.
func ParseTimedText(data []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", scrapemd.Errorf(scrapemd.EINTERNAL, "malformed caption document: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return "", scrapemd.Errorf(scrapemd.EINTERNAL, "empty caption document")
	}

	var lines []string
	for _, el := range root.FindElements("//text") {
		text := strings.TrimSpace(html.UnescapeString(el.Text()))
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// FormatDuration renders seconds as M:SS, or H:MM:SS past an hour.
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatMarkdown(url string, meta *metadata, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	fmt.Fprintf(&b, "**URL**: %s\n\n", url)
	if meta.Author != "" {
		fmt.Fprintf(&b, "**Channel**: %s\n\n", meta.Author)
	}
	b.WriteString("## Description\n\n")
	if meta.Description != "" {
		b.WriteString(meta.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("## Transcript\n\n")
	if transcript != "" {
		b.WriteString(transcript)
	} else {
		b.WriteString("*Transcript not available*")
	}
	b.WriteString("\n")
	return b.String()
}

func (s *Scraper) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
