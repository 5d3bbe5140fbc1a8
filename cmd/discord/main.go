// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/suenala/internal/command/music"
	"github.com/keshon/suenala/internal/command/phrases"
	"github.com/keshon/suenala/internal/config"
	"github.com/keshon/suenala/internal/discord"
	"github.com/keshon/suenala/internal/keepalive"
	"github.com/keshon/suenala/internal/logging"
	"github.com/keshon/suenala/internal/music/parsers/kkdai"
	"github.com/keshon/suenala/internal/music/player"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/source_resolver"
	"github.com/keshon/suenala/internal/music/sources"
	"github.com/keshon/suenala/internal/music/sources/radio"
	"github.com/keshon/suenala/internal/music/sources/soundcloud"
	"github.com/keshon/suenala/internal/music/sources/youtube"
	"github.com/keshon/suenala/internal/music/stream"
	phrasesvc "github.com/keshon/suenala/internal/phrases"
	"github.com/keshon/suenala/internal/storage"
	"github.com/keshon/suenala/internal/version"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/keshon/suenala/pkg/jobmgr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	dotenv := config.LoadDotEnv()

	cfg, err := config.New()
	if err != nil {
		// no logger yet; config decides where logs go
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	log, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, JSON: cfg.LogJSON})
	defer logCloser.Close()
	if !dotenv {
		log.Debug().Msg("no .env file found, using process environment")
	}
	log.Info().Str("app", version.AppName).Str("version", version.String()).Msg("starting bot")

	store, err := storage.New(cfg.PhrasesPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open phrase store")
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close phrase store")
		}
	}()

	phraseService, err := phrasesvc.New(store, cfg.DailyPhrasesSchedule, cfg.DailyPhrasesChannelID, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid daily phrase schedule")
		return err
	}
	if !cfg.DailyPhrasesEnabled() {
		log.Info().Msg("no daily phrase channel configured, use setfraseschannel to pick one")
	}

	// media pipeline
	yt := kkdai.NewClient(cfg.YouTubeProxy, log)
	ytSource := youtube.New(yt, youtube.NewSearch())
	resolver := source_resolver.New(
		ytSource,
		[]sources.Source{
			ytSource,
			soundcloud.New(soundcloud.YtdlpMetadata),
			radio.New(),
		},
		cfg.ResolveTimeout,
		log.With().Str("component", "resolver").Logger(),
	)
	opener := stream.NewOpener(
		stream.NewStreamersRegistry(yt),
		[]string{sources.ParserKkdaiLink, sources.ParserKkdaiPipe, sources.ParserYtdlpLink},
		log,
	)
	newPlayer := func() session.Player {
		return player.New(cfg.Volume, log)
	}

	commands := cmd.NewRegistry()
	bot, err := discord.New(cfg.DiscordToken, cfg.Prefix, commands, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Discord session")
		return err
	}
	notifier := discord.NewNotifier(bot, log)
	phraseService.SetSender(bot)

	sessions := session.NewRegistry(bot.Voice(), opener, newPlayer, notifier, session.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		ReadyTimeout:   cfg.ReadyTimeout,
		SettleDelay:    cfg.SettleDelay,
		ResolveTimeout: cfg.ResolveTimeout,
		Logger:         log,
	})
	bot.OnVoiceLost(sessions.HandleTransportDestroyed)

	if err := music.Register(commands, sessions, resolver, log); err != nil {
		log.Error().Err(err).Msg("failed to register music commands")
		return err
	}
	if err := phrases.Register(commands, phraseService, log); err != nil {
		log.Error().Err(err).Msg("failed to register phrase commands")
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobLog := log.With().Str("component", "jobs").Logger()
	jobs := jobmgr.NewManager(func(msg string) {
		jobLog.Debug().Msg(msg)
	})
	jobErrs := make(chan error, 3)
	startJob := func(name string, fn func(context.Context) error) error {
		return jobs.StartAsync(ctx, name, func(ctx context.Context) error {
			err := fn(ctx)
			if err != nil {
				jobErrs <- err
			}
			return err
		})
	}
	if err := startJob(discord.NotifierJobName, notifier.Run); err != nil {
		return err
	}
	if err := startJob(phrasesvc.JobName, phraseService.Run); err != nil {
		return err
	}
	if err := startJob(keepalive.JobName, func(ctx context.Context) error {
		return keepalive.Run(ctx, cfg.KeepAliveAddr, cfg.KeepAliveMessage, log)
	}); err != nil {
		return err
	}

	if err := bot.Open(); err != nil {
		log.Error().Err(err).Msg("failed to connect to Discord")
		jobs.StopAll()
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("❎ shutdown signal received, cleaning up")
	case err := <-jobErrs:
		log.Error().Err(err).Msg("background job failed, shutting down")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := sessions.StopAll(stopCtx); err != nil {
		log.Warn().Err(err).Msg("failed to stop all sessions")
	}
	if err := bot.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close Discord session")
	}
	log.Info().Str("jobs", jobs.Status()).Msg("stopping background jobs")
	cancel()
	jobs.StopAll()

	log.Info().Msg("bot exited cleanly")
	return nil
}
