// Package storage keeps the bot's phrase list on top of the JSON datastore.
package storage

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/keshon/suenala/datastore"
	"github.com/rs/zerolog"
)

const phrasesKey = "frases"

// DefaultPhrases seed a phrase file that is missing or unreadable.
var DefaultPhrases = []string{
	"El éxito no es definitivo, el fracaso no es fatal: lo que cuenta es el coraje para continuar.",
	"La única forma de hacer un gran trabajo es amar lo que haces.",
	"No importa lo lento que vayas, siempre y cuando no te detengas.",
}

// ErrEmptyPhrase is returned by Add for blank input.
var ErrEmptyPhrase = errors.New("phrase is empty")

type Storage struct {
	mu  sync.Mutex
	ds  *datastore.DataStore
	log zerolog.Logger
}

// New opens the phrase file at filePath. A missing, unparsable or phrase-less file
// is rewritten with DefaultPhrases.
func New(filePath string, log zerolog.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log
	cfg.BackupCount = 0

	ds, err := datastore.NewWithConfig(cfg)
	if errors.Is(err, datastore.ErrCorrupt) {
		log.Warn().Err(err).Str("path", filePath).Msg("phrase file unreadable, recreating with defaults")
		if rmErr := os.Remove(filePath); rmErr != nil {
			return nil, fmt.Errorf("remove corrupt phrase file: %w", rmErr)
		}
		ds, err = datastore.NewWithConfig(cfg)
	}
	if err != nil {
		return nil, err
	}

	s := &Storage{ds: ds, log: log}

	var phrases []string
	ok, err := ds.Decode(phrasesKey, &phrases)
	if err != nil || !ok {
		if err != nil {
			log.Warn().Err(err).Msg("phrase list has the wrong shape, recreating with defaults")
		}
		ds.Add(phrasesKey, slices.Clone(DefaultPhrases))
		if err := ds.SaveToFile(); err != nil {
			ds.Close()
			return nil, fmt.Errorf("write default phrases: %w", err)
		}
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Phrases returns a copy of the stored phrases in insertion order.
func (s *Storage) Phrases() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phrases()
}

func (s *Storage) phrases() ([]string, error) {
	var phrases []string
	if _, err := s.ds.Decode(phrasesKey, &phrases); err != nil {
		return nil, err
	}
	return phrases, nil
}

// AddPhrase appends text and rewrites the file before returning.
func (s *Storage) AddPhrase(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyPhrase
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	phrases, err := s.phrases()
	if err != nil {
		return err
	}
	phrases = append(phrases, text)
	s.ds.Add(phrasesKey, phrases)

	if err := s.ds.SaveToFile(); err != nil {
		return fmt.Errorf("save phrases: %w", err)
	}
	s.log.Info().Int("count", len(phrases)).Msg("phrase added")
	return nil
}
