package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var youtubeURLPattern = regexp.MustCompile(`^(?:https?:\/\/)?(?:www\.|music\.|m\.)?(youtube\.com|youtu\.be)\/\S+`)

func isYouTubeURL(input string) bool {
	return youtubeURLPattern.MatchString(input)
}

func isYouTubeVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com/watch?v=") ||
		strings.Contains(s, "youtube.com/shorts/") ||
		strings.Contains(s, "youtu.be/")
}

// CleanVideoURL strips everything but the video id from a watch or short link.
func CleanVideoURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := u.Hostname()

	switch host {
	case "youtu.be":
		// https://youtu.be/<id>?t=123
		vid := strings.Trim(u.Path, "/")
		if vid == "" {
			return raw
		}
		return "https://www.youtube.com/watch?v=" + vid

	case "www.youtube.com", "youtube.com", "music.youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if vid := u.Query().Get("v"); vid != "" {
				return "https://www.youtube.com/watch?v=" + vid
			}
		}
		if vid, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && vid != "" {
			return "https://www.youtube.com/watch?v=" + strings.Trim(vid, "/")
		}
		return raw

	default:
		return raw
	}
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func thumbnailURL(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}
