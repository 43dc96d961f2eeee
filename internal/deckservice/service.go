// Package deckservice orchestrates one generation request end to end:
// template analysis, outline drafting, placement, emission, and optional
// persistence. Each request owns its template model and outline; nothing is
// shared across concurrent requests.
package deckservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/deck"
	"github.com/starford/ansuz/internal/history"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/template"
)

// Service coordinates generation, the deck store, and history for the API
// and MCP layers.
type Service struct {
	store           storage.Provider
	db              *history.DB
	broker          *sse.Broker
	logger          *slog.Logger
	factory         llm.Factory
	emitter         deck.Emitter
	timeout         time.Duration
	defaultProvider string
}

// Option customizes a Service.
type Option func(*Service)

// WithClientFactory substitutes the LLM client factory (used by tests).
func WithClientFactory(f llm.Factory) Option {
	return func(s *Service) { s.factory = f }
}

// WithEmitter substitutes the deck emitter.
func WithEmitter(e deck.Emitter) Option {
	return func(s *Service) { s.emitter = e }
}

// New creates a Service. timeout bounds the LLM call; defaultProvider is
// used when a request does not name one.
func New(store storage.Provider, db *history.DB, broker *sse.Broker, logger *slog.Logger,
	timeout time.Duration, defaultProvider string, opts ...Option) *Service {
	s := &Service{
		store:           store,
		db:              db,
		broker:          broker,
		logger:          logger,
		factory:         llm.New,
		emitter:         deck.NewPackageWriter(),
		timeout:         timeout,
		defaultProvider: defaultProvider,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request carries one generation request.
type Request struct {
	Content  string
	Guidance string
	Provider string
	APIKey   string
	Template []byte // raw uploaded .pptx bytes, nil when no template supplied
	Save     bool
}

// Result is a completed generation.
type Result struct {
	RequestID  string
	Filename   string
	Title      string
	Provider   string
	SlideCount int
	Checksum   string
	Deck       []byte
}

// Generate runs the full pipeline. Template analysis never fails the
// request; LLM, normalization, and emission failures surface once, with no
// partial output and no automatic retry.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.NewString()
	log := s.logger.With(slog.String("request_id", requestID))

	provider := req.Provider
	if provider == "" {
		provider = s.defaultProvider
	}

	s.stage(requestID, "analyzing", "analyzing template")
	model := template.Build(req.Template, log)
	log.Debug("template model built",
		slog.Int("layouts", len(model.Layouts)),
		slog.Int("media", len(model.Media)))

	client, err := s.factory(provider, llm.Config{APIKey: req.APIKey, Timeout: s.timeout})
	if err != nil {
		return nil, err
	}

	s.stage(requestID, "drafting", "requesting outline from "+provider)
	system, user := llm.BuildPrompt(req.Content, req.Guidance, mediaNames(model))

	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := client.Complete(llmCtx, system, user)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("outline request timed out after %s: %w", s.timeout, err)
		}
		return nil, err
	}

	o, err := outline.Normalize(raw)
	if err != nil {
		var malformed *outline.MalformedError
		if errors.As(err, &malformed) {
			// The raw provider text stays in the logs and out of the response.
			log.Warn("outline rejected",
				slog.String("reason", malformed.Reason),
				slog.Int("raw_len", len(malformed.Raw)))
		}
		return nil, err
	}

	s.stage(requestID, "rendering", "placing "+fmt.Sprintf("%d slides", len(o.Slides)))
	plan := deck.BuildPlan(o, model)
	data, err := s.emitter.Emit(plan)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RequestID:  requestID,
		Filename:   plan.Filename + storage.DeckExtension,
		Title:      o.Title,
		Provider:   provider,
		SlideCount: len(o.Slides),
		Checksum:   checksum.Sum(data),
		Deck:       data,
	}

	if req.Save {
		if err := s.persist(result); err != nil {
			return nil, err
		}
	}

	s.stage(requestID, "complete", result.Filename)
	log.Info("deck generated",
		slog.String("filename", result.Filename),
		slog.String("provider", provider),
		slog.Int("slides", result.SlideCount),
		slog.Int("bytes", len(data)))
	return result, nil
}

func (s *Service) persist(r *Result) error {
	if err := s.store.Write(r.Filename, r.Deck); err != nil {
		return err
	}
	err := s.db.Record(models.Deck{
		Filename:   r.Filename,
		Title:      r.Title,
		Provider:   r.Provider,
		SlideCount: r.SlideCount,
		Checksum:   r.Checksum,
		SizeBytes:  int64(len(r.Deck)),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return err
	}
	if s.broker != nil {
		s.broker.PublishDeckEvent("created", r.Filename)
	}
	return nil
}

func (s *Service) stage(requestID, stage, message string) {
	if s.broker != nil {
		s.broker.PublishStage(requestID, stage, message)
	}
}

// ListDecks returns store metadata for every persisted deck.
func (s *Service) ListDecks() ([]models.DeckMetadata, error) {
	return s.store.List()
}

// ReadDeck returns the bytes of a persisted deck.
func (s *Service) ReadDeck(filename string) ([]byte, error) {
	if !strings.HasSuffix(filename, storage.DeckExtension) {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// DeleteDeck removes a deck from the store and its history row.
func (s *Service) DeleteDeck(filename string) error {
	if err := s.store.Delete(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.Delete(filename); err != nil {
		return err
	}
	if s.broker != nil {
		s.broker.PublishDeckEvent("deleted", filename)
	}
	return nil
}

// History returns recorded generations, newest first.
func (s *Service) History(limit, offset int) ([]models.Deck, int, error) {
	return s.db.List(limit, offset)
}

func mediaNames(m template.Model) []string {
	if len(m.Media) == 0 {
		return nil
	}
	names := make([]string, 0, len(m.Media))
	for name := range m.Media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
