package radio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var validContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream", // risky but often used for streams
}

// RadioResolver validates streaming radio links by checking headers and heuristics.
type RadioResolver struct {
	Client *http.Client
}

func NewRadioResolver() *RadioResolver {
	return &RadioResolver{
		Client: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Validate checks that rawURL serves something ffmpeg can play and returns the
// final URL after redirects.
func (r *RadioResolver) Validate(ctx context.Context, rawURL string) (string, error) {
	contentType, finalURL, err := r.fetchContentType(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content type: %w", err)
	}

	if isAllowedType(contentType) || isLikelyPlaylist(finalURL) {
		return finalURL, nil
	}
	return "", fmt.Errorf("invalid stream content-type: %q, url: %s", contentType, finalURL)
}

func (r *RadioResolver) fetchContentType(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.Client.Do(req)
	if err == nil && resp.StatusCode < 400 {
		resp.Body.Close()
		return resp.Header.Get("Content-Type"), resp.Request.URL.String(), nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	// some servers reject HEAD; read just the headers of a GET instead
	req.Method = http.MethodGet
	resp, err = r.Client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("GET fallback failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, 512)

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("GET fallback returned %s", resp.Status)
	}
	return resp.Header.Get("Content-Type"), resp.Request.URL.String(), nil
}

func isAllowedType(contentType string) bool {
	// strip params like "audio/mpeg; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	for _, allowed := range validContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func isLikelyPlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}

// titleFor derives a display title from the stream address.
func titleFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimSuffix(u.Host+u.Path, "/")
}
