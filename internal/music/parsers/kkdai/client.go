package kkdai

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"
)

const clientTimeout = 15 * time.Second

// NewClient builds a YouTube client, routed through proxyStr when it is set.
// http, https, socks4 and socks5 proxies are supported; anything unusable
// falls back to a direct client.
func NewClient(proxyStr string, log zerolog.Logger) *youtube.Client {
	log = log.With().Str("component", "kkdai").Logger()

	direct := &youtube.Client{HTTPClient: &http.Client{Timeout: clientTimeout}}
	if proxyStr == "" {
		return direct
	}

	transport, err := proxyTransport(proxyStr)
	if err != nil {
		log.Warn().Err(err).Msg("proxy unusable, using a direct connection")
		return direct
	}

	log.Info().Str("proxy", redact(proxyStr)).Msg("using proxy for YouTube")
	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout:   clientTimeout,
			Transport: transport,
		},
	}
}

func proxyTransport(proxyStr string) (*http.Transport, error) {
	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, err
	}

	switch proxyURL.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil
	case "socks4", "socks5":
		// socks4 is registered with x/net/proxy by go-socks4
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}, nil
	default:
		return nil, &url.Error{Op: "proxy", URL: proxyStr, Err: errUnsupportedScheme}
	}
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
