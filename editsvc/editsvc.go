// Package editsvc is the service around the patch locator.
//
// It sits between the live-DOM side (inspector, browser extensions, MCP
// clients) and the project's source tree. The pipeline:
//
//	edit request → resolve file → sanitize → locator fast path → verify → write → journal
//
// Key properties:
//   - Fast path first: the deterministic locator answers most requests;
//     a configured Generator is consulted only on decline.
//   - Nothing is written unverified: a patch that breaks quote balance or
//     markup tokenization is converted back into a decline.
//   - Every write is journaled with the pre-patch text, so any patch can
//     be undone as long as the file has not moved on.
//
// Usage:
//
//	svc, err := editsvc.New(cfg, logger)
//	defer svc.Close()
//	svc.RegisterMCP(mcpServer)
//	res, err := svc.Apply(ctx, req)
package editsvc

import (
	"log/slog"

	"github.com/hazyhaar/domedit/editsvc/internal/journal"
	"github.com/hazyhaar/domedit/idgen"
)

// Service orchestrates file resolution, patching, verification, the write
// path, and the undo journal.
type Service struct {
	cfg       *Config
	journal   *journal.Store
	logger    *slog.Logger
	newID     idgen.Generator
	generator Generator
}

// Option customises Service construction.
type Option func(*Service)

// WithGenerator installs the slow-path patch generator consulted when the
// fast path declines. Without one, declines surface as ErrDeclined.
func WithGenerator(g Generator) Option { return func(s *Service) { s.generator = g } }

// WithIDGenerator overrides the patch ID strategy. Default: "pat_" + UUIDv7.
func WithIDGenerator(gen idgen.Generator) Option { return func(s *Service) { s.newID = gen } }

// New creates a Service. Opens (or creates) the journal database at
// cfg.DBPath and applies its schema.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	j, err := journal.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:     cfg,
		journal: j,
		logger:  logger,
		newID:   idgen.Prefixed("pat_", idgen.UUIDv7()),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the journal database.
func (s *Service) Close() error {
	return s.journal.Close()
}
