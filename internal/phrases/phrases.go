// Package phrases serves motivational phrases on demand and posts one every morning.
package phrases

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/suenala/internal/discord/embeds"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Fallback is served when the store holds no phrases.
const Fallback = "¡Que tengas un excelente día!"

// JobName is the jobmgr name of the daily job.
const JobName = "daily-phrase"

// Store is the persistent phrase list.
type Store interface {
	Phrases() ([]string, error)
	AddPhrase(text string) error
}

// Sender posts embeds to a text channel.
type Sender interface {
	SendEmbed(channelID string, e *discordgo.MessageEmbed) error
}

// Service picks phrases and owns the daily schedule.
type Service struct {
	store    Store
	schedule cron.Schedule
	spec     string
	log      zerolog.Logger

	mu        sync.RWMutex
	sender    Sender
	channelID string

	now  func() time.Time
	pick func(n int) int
}

// New validates the cron spec (standard five fields, local time). channelID may be
// empty, in which case the daily job does nothing until SetChannel is called.
func New(store Store, spec, channelID string, log zerolog.Logger) (*Service, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid daily phrase schedule %q: %w", spec, err)
	}
	return &Service{
		store:     store,
		schedule:  schedule,
		spec:      spec,
		channelID: channelID,
		log:       log.With().Str("component", "phrases").Logger(),
		now:       time.Now,
		pick:      rand.IntN,
	}, nil
}

// Random returns a random stored phrase, or Fallback when there are none.
func (s *Service) Random() string {
	all, err := s.store.Phrases()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read phrases")
	}
	if len(all) == 0 {
		return Fallback
	}
	return all[s.pick(len(all))]
}

// Add appends a phrase and persists it.
func (s *Service) Add(text string) error {
	return s.store.AddPhrase(text)
}

// SetSender sets where the daily phrase is posted through.
func (s *Service) SetSender(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// SetChannel redirects the daily phrase to channelID until the process restarts.
func (s *Service) SetChannel(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID = channelID
	s.log.Info().Str("channel", channelID).Msg("daily phrase channel set")
}

// Channel returns the current daily phrase channel.
func (s *Service) Channel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channelID
}

// Next returns the next time the daily phrase fires after t.
func (s *Service) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run drives the daily schedule until ctx is cancelled. It is meant to run as a job.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{s.log}))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.PostDaily() }))
	c.Start()
	s.log.Info().Str("schedule", s.spec).Time("next", s.Next(s.now())).Msg("daily phrase scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// PostDaily sends the daily phrase embed to the configured channel.
func (s *Service) PostDaily() {
	s.mu.RLock()
	sender, channelID := s.sender, s.channelID
	s.mu.RUnlock()

	if channelID == "" || sender == nil {
		s.log.Debug().Msg("no daily phrase channel configured, skipping")
		return
	}
	if err := sender.SendEmbed(channelID, embeds.DailyPhrase(s.Random(), s.now())); err != nil {
		s.log.Error().Err(err).Str("channel", channelID).Msg("failed to send daily phrase")
		return
	}
	s.log.Info().Str("channel", channelID).Msg("daily phrase sent")
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
