package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"sheetnorm/pkg/contracts/domain"
)

// Parser normalizes messy workbook grids into clean tabular sections.
// A Parser is stateless after construction and safe for concurrent use;
// every ParseFile call owns its own warning list and parse log.
type Parser struct {
	cfg     domain.ParseConfig
	matcher *Matcher
	logger  *slog.Logger
	debug   bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the structured logger. Without it the parser stays
// silent and only the internal parse log is kept.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithDebug lowers the logging cutoff so every parse log entry is also
// emitted through the structured logger.
func WithDebug(debug bool) Option {
	return func(p *Parser) { p.debug = debug }
}

// New builds a Parser for the given configuration. The branch list is
// mandatory; everything else falls back to working defaults.
func New(cfg domain.ParseConfig, opts ...Option) (*Parser, error) {
	if len(cfg.Branches) == 0 {
		return nil, fmt.Errorf("parser: configuration needs at least one branch name")
	}
	if cfg.MinDataCells == 0 {
		cfg.MinDataCells = DefaultMinDataCells
	}
	if cfg.HeaderSearchRows == 0 {
		cfg.HeaderSearchRows = DefaultHeaderSearchRows
	}

	p := &Parser{
		cfg:     cfg,
		matcher: NewMatcher(cfg.FuzzyThreshold),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns a copy of the effective configuration.
func (p *Parser) Config() domain.ParseConfig { return p.cfg }

// ParseFile opens the workbook at path and parses the revenue, costs
// and optional hours sections from it. Only failures to open or decode
// the workbook return an error; structural ambiguity and data-quality
// problems degrade into warnings and log entries inside the bundle.
func (p *Parser) ParseFile(ctx context.Context, path string) (*domain.Bundle, error) {
	book, err := openWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer book.Close()

	r := &run{p: p}
	r.logf(ctx, kindInfo, "Loading workbook: %s", path)

	bundle := &domain.Bundle{}
	for _, sec := range []domain.Section{domain.SectionRevenue, domain.SectionCosts, domain.SectionHours} {
		if sec == domain.SectionHours && !p.cfg.Hours.HasRange() {
			r.logf(ctx, kindInfo, "Hours section not configured, skipping")
			continue
		}
		grid, err := book.Grid(p.cfg.BoundsFor(sec).Sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet for %s section: %w", sec, err)
		}
		parsed := r.parseSection(ctx, grid, sec)
		switch sec {
		case domain.SectionRevenue:
			bundle.Revenue = parsed
		case domain.SectionCosts:
			bundle.Costs = parsed
		case domain.SectionHours:
			bundle.Hours = parsed
		}
	}

	r.validateSection(ctx, bundle.Revenue, domain.SectionRevenue)
	r.validateSection(ctx, bundle.Costs, domain.SectionCosts)
	if bundle.Hours != nil {
		r.validateSection(ctx, bundle.Hours, domain.SectionHours)
	}

	bundle.Report = r.renderReport()
	bundle.Warnings = r.warnings
	return bundle, nil
}

// logKind tags a parse log entry so the reporter can tell structural
// findings, row removals and fuzzy-match corrections apart from plain
// progress notes.
type logKind int

const (
	kindInfo logKind = iota
	kindStructural
	kindRemoval
	kindFuzzy
)

func (k logKind) key() bool { return k != kindInfo }

type logEntry struct {
	kind logKind
	msg  string
}

// run holds the mutable state of one ParseFile invocation.
type run struct {
	p        *Parser
	warnings []string
	log      []logEntry
}

func (r *run) logf(ctx context.Context, kind logKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.log = append(r.log, logEntry{kind: kind, msg: msg})
	if r.p.debug || kind.key() {
		r.p.logger.DebugContext(ctx, msg)
	}
}

func (r *run) warnf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	r.log = append(r.log, logEntry{kind: kindInfo, msg: msg})
	r.p.logger.WarnContext(ctx, msg)
}
