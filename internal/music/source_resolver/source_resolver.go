package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/sources"
	"github.com/keshon/suenala/pkg/retrylimit"
)

const lookupAttempts = 3

// SourceResolver picks a source for user input and resolves it with retries.
// URL sources are tried in order; text that is not a link goes to search.
type SourceResolver struct {
	Sources []sources.Source
	Search  sources.Source

	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
	timeout time.Duration
	log     zerolog.Logger
}

// New builds a resolver. search handles free text; urlSources are matched in order,
// so the most permissive one (radio) belongs last.
func New(search sources.Source, urlSources []sources.Source, timeout time.Duration, log zerolog.Logger) *SourceResolver {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.MaxAttempts = lookupAttempts
	cfg.InitialDelay = 300 * time.Millisecond
	cfg.MaxDelay = 2 * time.Second
	cfg.Logger = log

	return &SourceResolver{
		Sources: urlSources,
		Search:  search,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		retry:   cfg,
		timeout: timeout,
		log:     log,
	}
}

// Pick returns the source that should handle input.
func (r *SourceResolver) Pick(input string) (sources.Source, error) {
	if !sources.IsURL(input) {
		if r.Search == nil {
			return nil, errors.New("title search is not available")
		}
		return r.Search, nil
	}
	for _, s := range r.Sources {
		if s.Match(input) {
			return s, nil
		}
	}
	return nil, errors.New("no matching source found")
}

// Resolve returns metadata for the first playable item behind input. Every failure
// wraps session.ErrResolution.
func (r *SourceResolver) Resolve(ctx context.Context, input string) (sources.TrackInfo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return sources.TrackInfo{}, fmt.Errorf("%w: empty input", session.ErrResolution)
	}

	src, err := r.Pick(input)
	if err != nil {
		return sources.TrackInfo{}, fmt.Errorf("%w: %w", session.ErrResolution, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var infos []sources.TrackInfo
	start := time.Now()
	err = retrylimit.WithRetryConfig(ctx, func() error {
		var rerr error
		infos, rerr = src.Resolve(ctx, input)
		if errors.Is(rerr, sources.ErrNoResults) {
			return retrylimit.Fatal(rerr)
		}
		return rerr
	}, r.limiter, r.retry)

	log := r.log.With().Str("source", src.SourceName()).Str("input", input).Dur("took", time.Since(start)).Logger()
	if err != nil {
		log.Warn().Err(err).Msg("resolve failed")
		return sources.TrackInfo{}, fmt.Errorf("%w: %w", session.ErrResolution, err)
	}
	if len(infos) == 0 {
		return sources.TrackInfo{}, fmt.Errorf("%w: %w", session.ErrResolution, sources.ErrNoResults)
	}

	log.Debug().Str("title", infos[0].Title).Msg("resolved")
	return infos[0], nil
}
