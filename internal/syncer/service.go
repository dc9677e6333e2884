// Package syncer runs the user-facing operations: it resolves settings,
// talks to Postman and the other collaborators, and hands the pure work to
// the reconcile, docs and reporter packages.
package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"postman-sync/internal/client"
	"postman-sync/internal/config"
	"postman-sync/internal/docs"
	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/history"
	"postman-sync/internal/llm"
	"postman-sync/internal/parser"
	"postman-sync/internal/postman"
	"postman-sync/internal/reconcile"
	"postman-sync/internal/reporter"
	"postman-sync/internal/types"
)

// Command names as recorded in run reports and history.
const (
	CommandPreview = "preview"
	CommandSync    = "sync"
)

// CollectionClient reads and writes Postman collections.
type CollectionClient interface {
	FetchCollection(ctx context.Context, uid string) (*postman.Envelope, error)
	UpdateCollection(ctx context.Context, uid string, env *postman.Envelope) error
	CheckConnection(ctx context.Context, uid string) (client.ConnectionStatus, error)
}

// HistoryStore keeps a log of runs.
type HistoryStore interface {
	Record(ctx context.Context, run reporter.Run) (string, error)
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Service wires the configuration to the collaborators
type Service struct {
	config   *config.Config
	client   CollectionClient
	analyzer llm.Analyzer
	history  HistoryStore
	reporter *reporter.Reporter
	openapi  *parser.SwaggerParser
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithAnalyzer enables the analyze command.
func WithAnalyzer(a llm.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithHistory records every preview and sync.
func WithHistory(h HistoryStore) Option {
	return func(s *Service) { s.history = h }
}

// WithReporter writes a report file for every preview and sync.
func WithReporter(r *reporter.Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. cfg is used as is; flag overrides must already be
// applied.
func New(cfg *config.Config, c CollectionClient, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		config:  cfg,
		client:  c,
		openapi: parser.NewSwaggerParser(logger),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options returns the reconciliation options of the configuration.
func (s *Service) Options() reconcile.Options {
	return reconcile.Options{
		PreserveExistingDocs: s.config.Sync.PreserveExistingDocs,
		IncludeDocumentation: s.config.Sync.IncludeDocumentation,
	}
}

// Preview reconciles input against the remote collection and describes the
// outcome without writing anything back.
func (s *Service) Preview(ctx context.Context, input any) (string, error) {
	result, err := s.reconcile(ctx, input)
	if err != nil {
		return "", err
	}
	s.record(ctx, CommandPreview, result.Report)
	return reporter.Preview(result.Report), nil
}

// Sync reconciles input against the remote collection and uploads the
// result.
func (s *Service) Sync(ctx context.Context, input any) (string, error) {
	result, err := s.reconcile(ctx, input)
	if err != nil {
		return "", err
	}

	uid := s.config.Postman.CollectionUID
	env := &postman.Envelope{Collection: result.Collection}
	if err := s.client.UpdateCollection(ctx, uid, env); err != nil {
		return "", err
	}

	s.logger.Info().
		Int("new", len(result.Report.New)).
		Int("updated", len(result.Report.Updated)).
		Int("unchanged", len(result.Report.Unchanged)).
		Msg("collection synchronized")
	s.record(ctx, CommandSync, result.Report)
	return reporter.Summary(result.Report, s.Options(), uid), nil
}

func (s *Service) reconcile(ctx context.Context, input any) (reconcile.Result, error) {
	if err := s.config.RequirePostman(); err != nil {
		return reconcile.Result{}, err
	}
	set, err := types.DecodeEndpointSet(input)
	if err != nil {
		return reconcile.Result{}, err
	}

	uid := s.config.Postman.CollectionUID
	env, err := s.client.FetchCollection(ctx, uid)
	if err != nil {
		return reconcile.Result{}, err
	}

	opts := s.Options()
	opts.Now = s.now()
	return reconcile.Reconcile(env.Collection, set, opts), nil
}

func (s *Service) record(ctx context.Context, command string, report reconcile.Report) {
	run := reporter.Run{
		ID:            uuid.NewString(),
		Command:       command,
		CollectionUID: s.config.Postman.CollectionUID,
		Timestamp:     s.now(),
		Options:       s.Options(),
		Report:        report,
	}

	if s.reporter.Enabled() {
		paths, err := s.reporter.Save(run)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to write run report")
		} else {
			s.logger.Debug().Strs("paths", paths).Msg("run report written")
		}
	}

	if s.history != nil {
		if _, err := s.history.Record(ctx, run); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record run history")
		}
	}
}

// Docs renders input as standalone documentation.
func (s *Service) Docs(input any, opts docs.Options) (string, error) {
	set, err := types.DecodeEndpointSet(input)
	if err != nil {
		return "", err
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = s.now()
	}
	return docs.Render(set, opts)
}

// Check reports which settings are present and whether the collection can
// be reached. Problems are reported in the text, never as an error.
func (s *Service) Check(ctx context.Context) string {
	uid := s.config.Postman.CollectionUID
	apiKey := s.config.Postman.APIKey
	projectPath := s.config.Rails.ProjectPath

	var status []string
	if uid == "" {
		status = append(status, "❌ POSTMAN_COLLECTION_UID environment variable not set")
	} else {
		status = append(status, "✅ POSTMAN_COLLECTION_UID: "+uid)
	}

	if apiKey == "" {
		status = append(status, "❌ POSTMAN_API_KEY environment variable not set")
	} else {
		status = append(status, "✅ POSTMAN_API_KEY: Set")
	}

	if projectPath == "" {
		status = append(status, "❌ RAILS_PROJECT_PATH environment variable not set")
	} else {
		status = append(status, "✅ RAILS_PROJECT_PATH: "+projectPath)
		routes := parser.RoutesPath(projectPath)
		if parser.RoutesExist(projectPath) {
			status = append(status, "✅ routes.rb found at: "+routes)
		} else {
			status = append(status, "❌ routes.rb not found at: "+routes)
		}
	}

	if uid != "" && apiKey != "" {
		conn, err := s.client.CheckConnection(ctx, uid)
		switch {
		case err != nil:
			status = append(status, "❌ Error checking connections: "+err.Error())
		case conn.StatusCode == 200:
			status = append(status, fmt.Sprintf("✅ Successfully connected to Postman collection: '%s'", conn.CollectionName))
		case conn.StatusCode == 401:
			status = append(status, "❌ Invalid Postman API key")
		case conn.StatusCode == 404:
			status = append(status, fmt.Sprintf("❌ Collection not found (UID: %s)", uid))
		default:
			status = append(status, fmt.Sprintf("❌ Error connecting to Postman API: %d", conn.StatusCode))
		}
	}

	return strings.Join(status, "\n")
}

// Routes returns the routes file of the configured Rails project.
func (s *Service) Routes() (string, error) {
	if err := s.config.RequireRails(); err != nil {
		return "", err
	}
	return parser.ReadRoutes(s.config.Rails.ProjectPath)
}

// ImportOpenAPI derives endpoints from an OpenAPI document. source is a
// file path, or an http(s) base URL whose usual documentation locations are
// probed.
func (s *Service) ImportOpenAPI(ctx context.Context, source string) (types.EndpointSet, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return s.openapi.ParseURL(ctx, source)
	}
	return s.openapi.ParseFile(source)
}

// History lists the most recent runs.
func (s *Service) History(ctx context.Context, limit int) (string, error) {
	if s.history == nil {
		return "", syncerrors.NewMissingCredentialError(
			"Set history.driver and its connection settings in the config file", "SYNC_HISTORY_DRIVER")
	}

	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No runs recorded yet.", nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s  %-7s  %s  +%d ~%d =%d  %s",
			e.Timestamp.Format(docs.TimestampLayout), e.Command, e.CollectionUID,
			e.New, e.Updated, e.Unchanged, e.ID))
	}
	return strings.Join(lines, "\n"), nil
}
