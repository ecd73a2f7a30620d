package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/weathersnapshot/internal/config"
	"github.com/lox/weathersnapshot/internal/dbservice"
	"github.com/lox/weathersnapshot/internal/fileutil"
	"github.com/lox/weathersnapshot/internal/metrics"
	"github.com/lox/weathersnapshot/internal/models"
	"github.com/lox/weathersnapshot/internal/publish"
	"github.com/lox/weathersnapshot/internal/quality"
	"github.com/lox/weathersnapshot/internal/render"
	"github.com/lox/weathersnapshot/internal/snapshot"
	"github.com/lox/weathersnapshot/internal/store"
)

// ErrNoReadings is returned when the table holds no readings to report on.
var ErrNoReadings = errors.New("no readings found")

// ServiceChecker ensures the database service is up before connecting.
type ServiceChecker interface {
	Ensure(ctx context.Context) error
}

// Result summarises a successful run.
type Result struct {
	Readings  int
	Latest    models.Reading
	Files     []string
	Published bool
}

// Runner executes one snapshot run: service check, connect, fetch, render
// and write.
type Runner struct {
	cfg      *config.Config
	manager  string
	service  string
	loc      *time.Location
	echarts  []byte
	checker  ServiceChecker
	open     store.Opener
	uploader *publish.Uploader
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Runner)

func WithServiceChecker(c ServiceChecker) Option { return func(r *Runner) { r.checker = c } }
func WithOpener(open store.Opener) Option { return func(r *Runner) { r.open = open } }
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// New builds a Runner from cfg. Collaborators not supplied as options are
// derived from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	var echarts []byte
	if cfg.EChartsJS != "" {
		if echarts, err = os.ReadFile(cfg.EChartsJS); err != nil {
			return nil, fmt.Errorf("read echarts script: %w", err)
		}
	}

	manager := cfg.ResolvedServiceManager()
	r := &Runner{
		cfg:     cfg,
		manager: manager,
		service: cfg.ResolvedServiceName(manager),
		loc:     loc,
		echarts: echarts,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.checker == nil {
		m, err := dbservice.NewManager(manager, dbservice.ExecRunner{})
		if err != nil {
			return nil, err
		}
		r.checker = dbservice.NewChecker(m, r.service, logger)
	}
	if r.open == nil {
		r.open = store.NewOpener(cfg)
	}
	r.uploader = publish.NewUploader(publish.FTPConfig{
		Addr:     cfg.FTPAddr,
		User:     cfg.FTPUser,
		Password: cfg.FTPPassword,
		Dir:      cfg.FTPDir,
	}, logger)
	r.metrics = metrics.New()
	return r, nil
}

// Run performs one snapshot run. Every artifact is rendered in memory before
// any file is written, so a failure before the write phase leaves the output
// directory untouched.
func (r *Runner) Run(ctx context.Context) (res *Result, err error) {
	started := r.now()
	defer func() {
		r.metrics.ObserveRun(err, started, r.now())
		r.writeMetrics()
	}()

	if err := r.checker.Ensure(ctx); err != nil {
		return nil, &Error{Kind: KindServiceUnavailable, Err: err, Checklist: serviceChecklist(r.manager, r.service)}
	}

	set, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	latest, _ := set.Latest()
	r.inspect(set)

	files, err := r.renderAll(set, latest)
	if err != nil {
		return nil, &Error{Kind: KindRenderFailure, Err: err}
	}

	paths, err := r.writeAll(files)
	if err != nil {
		return nil, &Error{Kind: KindFileWriteFailure, Err: err, Checklist: writeChecklist(r.cfg.OutputDir)}
	}

	res = &Result{Readings: len(set), Latest: latest, Files: paths}

	if r.uploader.Enabled() {
		if err := r.uploader.Upload(ctx, files); err != nil {
			return nil, &Error{Kind: KindPublishFailure, Err: err, Checklist: publishChecklist(r.cfg.FTPAddr)}
		}
		res.Published = true
	}

	r.logger.Info("snapshot complete",
		"readings", res.Readings,
		"latest_id", latest.ID,
		"output_dir", r.cfg.OutputDir,
		"duration", r.now().Sub(started).Round(time.Millisecond),
	)
	return res, nil
}

// fetch connects, reads the latest readings and closes the connection before
// returning on every path.
func (r *Runner) fetch(ctx context.Context) (models.ReadingSet, error) {
	for _, w := range r.cfg.Warnings() {
		r.logger.Warn("configuration warning", "warning", w)
	}

	db, err := store.Connect(ctx, r.countingOpener(), r.cfg.ConnectAttempts, r.cfg.ConnectDelay, r.logger)
	if err != nil {
		return nil, &Error{
			Kind:      KindConnectionFailure,
			Err:       err,
			Checklist: connectionChecklist(r.cfg.DBDriver, r.manager, r.service, r.cfg.DBName, r.cfg.DBPath),
		}
	}
	st := store.New(db, r.cfg.DBTable, r.loc)
	defer func() {
		if err := st.Close(); err != nil {
			r.logger.Warn("close database", "err", err)
		}
	}()

	set, err := st.LatestReadings(ctx)
	if err != nil {
		return nil, &Error{Kind: KindQueryFailure, Err: err, Checklist: queryChecklist(r.cfg.DBTable)}
	}
	if len(set) == 0 {
		return nil, &Error{
			Kind:      KindQueryFailure,
			Err:       fmt.Errorf("%w in %s", ErrNoReadings, r.cfg.DBTable),
			Checklist: []string{fmt.Sprintf("the weather feed is inserting rows into %s", r.cfg.DBTable)},
		}
	}
	r.metrics.ReadingsFetched.Set(float64(len(set)))
	r.logger.Info("fetched readings", "count", len(set), "newest_id", set[0].ID)
	return set, nil
}

func (r *Runner) countingOpener() store.Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		r.metrics.ConnectAttempts.Inc()
		return r.open(ctx)
	}
}

// inspect logs quality flags and staleness. Neither is fatal.
func (r *Runner) inspect(set models.ReadingSet) {
	summary := quality.Check(set)
	for flag, n := range summary.ByFlag {
		r.metrics.QualityFlags.WithLabelValues(flag).Add(float64(n))
		r.logger.Warn("quality flag raised", "flag", flag, "readings", n)
	}
	for _, reading := range set {
		if flags := quality.Validate(reading); len(flags) > 0 {
			r.logger.Debug("reading flagged", "id", reading.ID, "flags", flags)
		}
	}

	fresh := quality.Freshness(set, r.now(), r.cfg.StaleAfter)
	r.metrics.NewestReadingAge.Set(fresh.Age.Seconds())
	if fresh.Stale {
		r.logger.Warn("newest reading is stale",
			"newest", fresh.Newest.Format(snapshot.TimestampLayout),
			"age", fresh.Age.Round(time.Second),
			"stale_after", r.cfg.StaleAfter,
		)
	}
}

func (r *Runner) renderAll(set models.ReadingSet, latest models.Reading) ([]publish.File, error) {
	csv, err := snapshot.Encode(set)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	card, err := render.CurrentCardBytes(latest)
	if err != nil {
		return nil, err
	}
	trend, err := render.TemperatureTrendBytes(set, r.echarts)
	if err != nil {
		return nil, err
	}

	files := []publish.File{
		{Name: snapshot.FileName, Data: csv},
		{Name: render.CardFileName, Data: card},
		{Name: render.TrendFileName, Data: trend},
	}

	if r.cfg.ShareCard {
		png, err := render.ShareCard(latest)
		if err != nil {
			return nil, err
		}
		files = append(files, publish.File{Name: render.ShareCardFileName, Data: png})
	}
	return files, nil
}

func (r *Runner) writeAll(files []publish.File) ([]string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(r.cfg.OutputDir, f.Name)
		if err := fileutil.WriteFileAtomic(path, f.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", f.Name, err)
		}
		r.logger.Info("wrote artifact", "path", path, "bytes", len(f.Data))
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Runner) writeMetrics() {
	if r.cfg.MetricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
		r.logger.Warn("write metrics", "err", err)
	}
}
