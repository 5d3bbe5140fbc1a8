package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kkdai "github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"

	"github.com/keshon/suenala/internal/music/sources"
	"github.com/keshon/suenala/pkg/util"
)

// VideoFetcher loads video metadata. *kkdai.Client satisfies it.
type VideoFetcher interface {
	GetVideoContext(ctx context.Context, url string) (*kkdai.Video, error)
}

// SearchHit is one free-text search result.
type SearchHit struct {
	VideoID  string
	Title    string
	Duration string // "3:45" style, may be empty
}

// SearchFunc runs a free-text YouTube search.
type SearchFunc func(ctx context.Context, query string) ([]SearchHit, error)

// NewSearch returns a SearchFunc backed by ytsearch.
func NewSearch() SearchFunc {
	client := ytsearch.NewClient(nil)
	return func(ctx context.Context, query string) ([]SearchHit, error) {
		res, err := client.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		hits := make([]SearchHit, 0, len(res.Results))
		for _, r := range res.Results {
			if r.VideoID == "" {
				continue
			}
			hits = append(hits, SearchHit{VideoID: r.VideoID, Title: r.Title, Duration: r.Duration})
		}
		return hits, nil
	}
}

type YouTubeSource struct {
	videos VideoFetcher
	search SearchFunc
}

func New(videos VideoFetcher, search SearchFunc) *YouTubeSource {
	return &YouTubeSource{videos: videos, search: search}
}

// Match accepts YouTube links and any text that is not a link.
func (y *YouTubeSource) Match(input string) bool {
	return isYouTubeURL(input) || !sources.IsURL(input)
}

func (y *YouTubeSource) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	input = strings.TrimSpace(input)

	if isYouTubeVideoURL(input) {
		return y.resolveVideo(ctx, CleanVideoURL(input))
	}
	if sources.IsURL(input) {
		return nil, errors.New("invalid YouTube URL format")
	}
	return y.resolveQuery(ctx, input)
}

func (y *YouTubeSource) resolveVideo(ctx context.Context, link string) ([]sources.TrackInfo, error) {
	video, err := y.videos.GetVideoContext(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("fetch video metadata: %w", err)
	}

	info := sources.TrackInfo{
		URL:              watchURL(video.ID),
		Title:            video.Title,
		Duration:         video.Duration,
		SourceName:       sources.SourceYouTube,
		AvailableParsers: y.AvailableParsers(),
	}
	if video.ID == "" {
		info.URL = link
	}
	if len(video.Thumbnails) > 0 {
		info.Thumbnail = video.Thumbnails[0].URL
	}
	return []sources.TrackInfo{info}, nil
}

func (y *YouTubeSource) resolveQuery(ctx context.Context, query string) ([]sources.TrackInfo, error) {
	hits, err := y.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %q", sources.ErrNoResults, query)
	}

	hit := hits[0]
	return []sources.TrackInfo{{
		URL:              watchURL(hit.VideoID),
		Title:            hit.Title,
		Duration:         util.ParseClock(hit.Duration),
		Thumbnail:        thumbnailURL(hit.VideoID),
		SourceName:       sources.SourceYouTube,
		AvailableParsers: y.AvailableParsers(),
	}}, nil
}

func (y *YouTubeSource) SourceName() string {
	return sources.SourceYouTube
}

func (y *YouTubeSource) AvailableParsers() []string {
	return []string{sources.ParserKkdaiLink, sources.ParserKkdaiPipe, sources.ParserYtdlpLink}
}
