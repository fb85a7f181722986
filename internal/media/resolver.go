package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>|]+`)

var imageHosts = []string{
	"imgur.com",
	"i.imgur.com",
	"pbs.twimg.com",
	"media.giphy.com",
}

var videoHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"youtu.be",
	"vimeo.com",
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

var videoExtensions = []string{".mp4", ".mov", ".webm", ".avi", ".mkv"}

// Resolver turns inbound attachment metadata and message text into a Bundle
// of usable media references. Images are downloaded and inlined as data URIs;
// everything else passes through as URLs.
type Resolver struct {
	logger     *slog.Logger
	httpClient *http.Client
	maxBytes   int64
}

// NewResolver creates a media resolver with the given fetch timeout.
func NewResolver(log *slog.Logger, timeout time.Duration) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		logger:     log.With(slog.String("service", "media")),
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   MaxAssetBytes,
	}
}

// Resolve classifies attachments, downloads image bytes, and scans the
// message text for media links. Individual item failures are logged and
// dropped; Resolve itself never fails.
func (r *Resolver) Resolve(ctx context.Context, msg Message) Bundle {
	var bundle Bundle
	for _, att := range msg.Attachments {
		switch {
		case strings.HasPrefix(att.Mimetype, "image/"):
			item, err := r.resolveImage(ctx, att, msg.AuthToken)
			if err != nil {
				r.logger.Warn("dropping image attachment",
					slog.String("name", att.Name),
					slog.String("error", err.Error()))
				continue
			}
			bundle.addImage(item)
		case strings.HasPrefix(att.Mimetype, "video/"):
			bundle.addVideo(Item{
				URL:      firstNonEmpty(att.URLPrivate, att.URLDownload),
				Name:     att.Name,
				Title:    att.Title,
				MimeType: att.Mimetype,
				Source:   SourceAttachment,
			})
		default:
			bundle.addFile(Item{
				URL:      firstNonEmpty(att.URLPrivate, att.URLDownload),
				Name:     att.Name,
				Title:    att.Title,
				MimeType: att.Mimetype,
				Source:   SourceAttachment,
			})
		}
	}
	r.scanText(&bundle, msg.Text)
	return bundle
}

// resolveImage tries each candidate URL in order and returns the first
// successful download inlined as a data URI.
func (r *Resolver) resolveImage(ctx context.Context, att Attachment, token string) (Item, error) {
	candidates := make([]string, 0, 2)
	// The download URL serves raw bytes directly; the private URL may
	// answer with an HTML viewer page, so it goes last.
	for _, candidate := range []string{att.URLDownload, att.URLPrivate} {
		if candidate != "" {
			candidates = append(candidates, candidate)
		}
	}
	if len(candidates) == 0 {
		return Item{}, fmt.Errorf("%w: attachment has no URL", ErrNoUsableCandidate)
	}
	var lastErr error
	for _, candidate := range candidates {
		data, mimeType, err := r.fetchImage(ctx, candidate, token)
		if err != nil {
			lastErr = err
			continue
		}
		return Item{
			URL:      fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
			Name:     att.Name,
			Title:    att.Title,
			MimeType: mimeType,
			Source:   SourceAttachment,
		}, nil
	}
	return Item{}, fmt.Errorf("%w: %v", ErrNoUsableCandidate, lastErr)
}

func (r *Resolver) fetchImage(ctx context.Context, rawURL, token string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch media: unexpected status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	mimeType, _, _ := strings.Cut(contentType, ";")
	mimeType = strings.TrimSpace(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("%w: got %q", ErrNotAnImage, contentType)
	}
	data, err := ReadAllWithLimit(resp.Body, r.maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

// scanText picks media URLs out of the message body and records them as
// pass-through links.
func (r *Resolver) scanText(bundle *Bundle, text string) {
	for _, rawURL := range urlPattern.FindAllString(text, -1) {
		rawURL = strings.TrimRight(rawURL, ".,;:!?)>")
		switch classifyURL(rawURL) {
		case "image":
			bundle.addImage(Item{URL: rawURL, Source: SourceTextLink})
		case "video":
			bundle.addVideo(Item{URL: rawURL, Source: SourceTextLink})
		}
	}
}

func classifyURL(rawURL string) string {
	lowered := strings.ToLower(rawURL)
	host := hostOf(lowered)
	for _, h := range videoHosts {
		if host == h {
			return "video"
		}
	}
	for _, h := range imageHosts {
		if host == h {
			return "image"
		}
	}
	path := lowered
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return "image"
		}
	}
	for _, ext := range videoExtensions {
		if strings.HasSuffix(path, ext) {
			return "video"
		}
	}
	return ""
}

func hostOf(rawURL string) string {
	rest := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
