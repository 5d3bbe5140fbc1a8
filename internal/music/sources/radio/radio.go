package radio

import (
	"context"

	"github.com/keshon/suenala/internal/music/sources"
)

// RadioSource plays direct audio links such as icecast streams.
type RadioSource struct {
	resolver *RadioResolver
}

func New() *RadioSource {
	return &RadioSource{resolver: NewRadioResolver()}
}

// Match accepts any http(s) link; Resolve does the real validation.
func (r *RadioSource) Match(input string) bool {
	return sources.IsURL(input)
}

func (r *RadioSource) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	finalURL, err := r.resolver.Validate(ctx, input)
	if err != nil {
		return nil, err
	}

	return []sources.TrackInfo{{
		URL:              finalURL,
		Title:            titleFor(input),
		SourceName:       sources.SourceRadio,
		AvailableParsers: r.AvailableParsers(),
	}}, nil
}

func (r *RadioSource) SourceName() string {
	return sources.SourceRadio
}

func (r *RadioSource) AvailableParsers() []string {
	return []string{sources.ParserFFmpegLink}
}
