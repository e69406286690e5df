// Package decompose is the entry point of shotkit: it turns narration and a
// target shot count into exactly that many moments.
//
// The pipeline is collaborator (optional) or rule-based extraction plus arc
// shaping, then count normalization, then action deduplication.
package decompose

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kittclouds/shotkit/internal/collaborator"
	"github.com/kittclouds/shotkit/pkg/emotion"
	"github.com/kittclouds/shotkit/pkg/extract"
	"github.com/kittclouds/shotkit/pkg/moment"
	"github.com/kittclouds/shotkit/pkg/sequence"
)

// Collaborator gating
const (
	CollaboratorMinChars  = 50 // narration must be longer than this
	CollaboratorMinTarget = 3
)

type config struct {
	gen      collaborator.Generator
	timeout  time.Duration
	log      *zap.Logger
	table    *emotion.Table
	seed     *uint64
	coref    bool
	synonyms bool
}

// Option configures an Engine
type Option func(*config)

// WithCollaborator enables the external generation path
func WithCollaborator(gen collaborator.Generator) Option {
	return func(c *config) {
		c.gen = gen
	}
}

// WithTimeout bounds each collaborator call
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTable replaces the built-in emotion table
func WithTable(t *emotion.Table) Option {
	return func(c *config) {
		c.table = t
	}
}

// WithSeed picks progression markers from a PRNG seeded with seed instead of
// rotating them by position.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = &seed
	}
}

// WithCoreference resolves pronouns to the last named subject
func WithCoreference(on bool) Option {
	return func(c *config) {
		c.coref = on
	}
}

// WithSynonyms makes deduplication treat synonyms (runs/sprints) as repeats
func WithSynonyms(on bool) Option {
	return func(c *config) {
		c.synonyms = on
	}
}

// Engine runs decompositions. It holds only read-only state after New and is
// safe for concurrent use.
type Engine struct {
	extractor *extract.Extractor
	dedup     *sequence.Deduplicator
	narrator  *collaborator.Narrator
	timeout   time.Duration
	log       *zap.Logger
}

// New creates an Engine
func New(opts ...Option) *Engine {
	cfg := config{
		timeout: collaborator.DefaultTimeout,
		log:     zap.NewNop(),
		table:   emotion.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.table == nil {
		cfg.table = emotion.Default()
	}

	ex := extract.New(extract.WithTable(cfg.table), extract.WithCoreference(cfg.coref))

	dedupOpts := []sequence.DedupOption{
		sequence.WithLogger(cfg.log),
		sequence.WithSynonyms(cfg.synonyms),
		sequence.WithVerbs(ex.Verbs()),
	}
	if cfg.seed != nil {
		dedupOpts = append(dedupOpts, sequence.WithSeed(*cfg.seed))
	}

	e := &Engine{
		extractor: ex,
		dedup:     sequence.NewDeduplicator(dedupOpts...),
		timeout:   cfg.timeout,
		log:       cfg.log,
	}
	if cfg.gen != nil {
		e.narrator = collaborator.NewNarrator(cfg.gen,
			collaborator.WithTable(cfg.table),
			collaborator.WithLogger(cfg.log),
		)
	}
	return e
}

// Decompose returns exactly target moments for narration.
//
// The collaborator is tried first when configured, the narration is longer
// than CollaboratorMinChars and target is at least CollaboratorMinTarget.
// Any collaborator failure is logged and the rule-based path runs instead.
func (e *Engine) Decompose(ctx context.Context, narration string, target int, sc moment.Context) ([]moment.Moment, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: target count %d, must be at least 1", ErrInvalidArgument, target)
	}
	if !utf8.ValidString(narration) {
		return nil, fmt.Errorf("%w: narration is not valid UTF-8", ErrInvalidArgument)
	}

	log := e.log.With(zap.String("requestId", uuid.NewString()))

	moments, path := e.collaborate(ctx, log, narration, target, sc)
	if moments == nil {
		moments = sequence.Shape(e.extractor.Extract(narration, sc))
		path = "rules"
	}

	normalized, err := sequence.Normalize(moments, target, sc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	out := e.dedup.Deduplicate(normalized)

	log.Debug("narration decomposed",
		zap.String("path", path),
		zap.Int("extracted", len(moments)),
		zap.Int("target", target),
		zap.Float64s("arc", moment.Intensities(out)),
	)
	return out, nil
}

func (e *Engine) collaborate(ctx context.Context, log *zap.Logger, narration string, target int, sc moment.Context) ([]moment.Moment, string) {
	if e.narrator == nil || utf8.RuneCountInString(narration) <= CollaboratorMinChars || target < CollaboratorMinTarget {
		return nil, ""
	}

	moments, err := e.narrator.Decompose(ctx, collaborator.Request{
		Narration: narration,
		Target:    target,
		Context:   sc,
		Timeout:   e.timeout,
	})
	if err != nil {
		log.Warn("collaborator failed, using rule-based extraction", zap.Error(err))
		return nil, ""
	}
	return moments, "collaborator"
}
