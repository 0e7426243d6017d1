// Package pipeline runs one client reconciliation end to end:
// load → treat → dedupe → anti-join → split → export. Each run is a one-shot
// batch recomputed from the latest files on disk; re-running is always safe.
package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/cobmax/batimento/internal/domain/recon"
	"github.com/cobmax/batimento/internal/infrastructure/config"
	"github.com/cobmax/batimento/internal/infrastructure/csvio"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes client pipelines.
type Runner struct {
	log      *zap.Logger
	loader   *csvio.Loader
	exporter *csvio.Exporter
	now      func() time.Time
}

// NewRunner creates a runner. The clock is injectable for deterministic
// aging computation and archive names in tests.
func NewRunner(log *zap.Logger, loader *csvio.Loader, exporter *csvio.Exporter, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{log: log, loader: loader, exporter: exporter, now: now}
}

// SideReport summarizes the treatment of one input side.
type SideReport struct {
	Input     int
	Valid     int
	Invalid   int
	Reasons   map[string]int
	Secondary int
	// InconsistenciesPath is empty when every row was valid.
	InconsistenciesPath string
	// EnrichmentPath is empty when deduplication produced no secondary rows.
	EnrichmentPath string
}

// DirectionReport summarizes one reconciliation direction.
type DirectionReport struct {
	Name        string
	Rows        int
	Buckets     map[string]int
	ArchivePath string
}

// Summary is the end-of-run report logged and returned to the CLI.
type Summary struct {
	RunID      uuid.UUID
	Client     string
	Source     SideReport
	Max        SideReport
	Directions []DirectionReport
	Elapsed    time.Duration
}

// treatedSide is one input after treatment and optional deduplication.
type treatedSide struct {
	primary   *dataset.Dataset
	secondary *dataset.Dataset
	report    SideReport
}

// Run executes the full pipeline for one client. Configuration, extraction
// and decryption failures abort the run; row-level validation failures are
// data, collected into the inconsistencies outputs.
func (r *Runner) Run(client *config.Client) (*Summary, error) {
	started := r.now()
	summary := &Summary{RunID: uuid.New(), Client: client.Name}
	log := r.log.With(zap.String("client", client.Name), zap.String("run_id", summary.RunID.String()))
	log.Info("pipeline started")

	// Build every configured splitter first so a bad split spec or a
	// duplicated direction fails before any file is read.
	splitters := recon.NewSplitterRegistry()
	for _, direction := range client.Directions {
		if direction.Split == nil {
			continue
		}
		s, err := buildSplitter(*direction.Split, r.now)
		if err != nil {
			return nil, err
		}
		if err := splitters.Register(direction.Name, s); err != nil {
			return nil, err
		}
	}

	source, err := r.prepareSide(log.Named("source"), client, client.Source, "source")
	if err != nil {
		return nil, err
	}
	summary.Source = source.report

	max, err := r.prepareSide(log.Named("max"), client, client.Max, "max")
	if err != nil {
		return nil, err
	}
	summary.Max = max.report

	for _, direction := range client.Directions {
		report, err := r.runDirection(log.Named(direction.Name), client, direction, splitters, source, max)
		if err != nil {
			return nil, err
		}
		summary.Directions = append(summary.Directions, *report)
	}

	summary.Elapsed = r.now().Sub(started)
	logSummary(log, summary)
	return summary, nil
}

// prepareSide loads, treats and (when configured) deduplicates one input.
func (r *Runner) prepareSide(log *zap.Logger, client *config.Client, spec config.DatasetSpec, label string) (*treatedSide, error) {
	raw, err := r.loader.Load(spec.Input.Source())
	if err != nil {
		return nil, err
	}

	keyGen, err := buildKeyGenerator(spec.Treatment.Key)
	if err != nil {
		return nil, err
	}
	chain, err := buildChain(spec.Treatment.Validators, r.now)
	if err != nil {
		return nil, err
	}

	treated, err := recon.Treat(raw, keyGen, chain, recon.TreatmentOptions{
		RejectLineBreaks: spec.Treatment.RejectLineBreaks,
		MoneyColumns:     spec.Treatment.MoneyColumns,
		DateColumns:      spec.Treatment.DateColumns,
		DateLayouts:      spec.Treatment.DateLayouts,
	})
	if err != nil {
		return nil, err
	}

	side := &treatedSide{
		primary: treated.Valid,
		report: SideReport{
			Input:   raw.Len(),
			Valid:   treated.Valid.Len(),
			Invalid: treated.Invalid.Len(),
			Reasons: treated.Reasons,
		},
	}

	if treated.Invalid.Len() > 0 {
		path := filepath.Join(client.Output.Dir,
			fmt.Sprintf("%s_%s_inconsistencias.csv", client.Name, label))
		if err := r.exporter.ExportCSV(path, treated.Invalid, client.Output.Options()); err != nil {
			return nil, err
		}
		side.report.InconsistenciesPath = path
	}

	if spec.Dedupe != nil {
		keyColumn := spec.Dedupe.KeyColumn
		if keyColumn == "" {
			keyColumn = dataset.KeyColumn
		}
		primary, secondary, err := recon.Dedupe(side.primary, keyColumn, buildTieBreak(spec.Dedupe.TieBreak))
		if err != nil {
			return nil, err
		}
		side.primary = primary
		side.secondary = secondary
		side.report.Secondary = secondary.Len()

		// Secondary rows carry the extra parties sharing a key (several
		// documents on one protocol); they are exported so those contacts
		// are not lost to the dedup.
		if secondary.Len() > 0 {
			path := filepath.Join(client.Output.Dir,
				fmt.Sprintf("%s_%s_enriquecimento.csv", client.Name, label))
			if err := r.exporter.ExportCSV(path, secondary, client.Output.Options()); err != nil {
				return nil, err
			}
			side.report.EnrichmentPath = path
		}
	}

	log.Info("side prepared",
		zap.Int("input", side.report.Input),
		zap.Int("valid", side.report.Valid),
		zap.Int("invalid", side.report.Invalid),
		zap.Int("secondary", side.report.Secondary))
	return side, nil
}

// runDirection computes one anti-join direction, splits it into carteiras
// and exports the archive.
func (r *Runner) runDirection(log *zap.Logger, client *config.Client, spec config.DirectionSpec, splitters *recon.SplitterRegistry, source, max *treatedSide) (*DirectionReport, error) {
	var result *dataset.Dataset
	var err error
	switch spec.Name {
	case config.DirectionBatimento:
		result, err = recon.AntiJoin(source.primary, max.primary, dataset.KeyColumn, dataset.KeyColumn)
	case config.DirectionBaixa:
		result, err = recon.AntiJoin(max.primary, source.primary, dataset.KeyColumn, dataset.KeyColumn)
	default:
		err = fmt.Errorf("%w: unknown direction %q", dataset.ErrConfiguration, spec.Name)
	}
	if err != nil {
		return nil, err
	}

	buckets := map[string]*dataset.Dataset{spec.Name: result}
	if spec.Split != nil {
		splitter, err := splitters.Get(spec.Name)
		if err != nil {
			return nil, err
		}
		buckets, err = splitter.Split(result)
		if err != nil {
			return nil, err
		}
	}

	layout := make([]csvio.ColumnMapping, len(spec.Layout))
	for i, m := range spec.Layout {
		layout[i] = csvio.ColumnMapping{Output: m.Output, Source: m.Source, Default: m.Default}
	}

	report := &DirectionReport{Name: spec.Name, Rows: result.Len(), Buckets: make(map[string]int, len(buckets))}
	files := make(map[string]*dataset.Dataset, len(buckets))
	for name, bucket := range buckets {
		report.Buckets[name] = bucket.Len()
		files[fmt.Sprintf("%s_%s", spec.Prefix, name)] = csvio.FormatLayout(bucket, layout)
	}

	path, err := r.exporter.ExportZip(client.Output.Dir, spec.Prefix, files, client.Output.Options())
	if err != nil {
		return nil, err
	}
	report.ArchivePath = path

	log.Info("direction exported",
		zap.Int("rows", report.Rows),
		zap.Any("buckets", report.Buckets),
		zap.String("archive", path))
	return report, nil
}

// logSummary emits the end-of-run block: counts, per-reason breakdown and
// every path written.
func logSummary(log *zap.Logger, s *Summary) {
	fields := []zap.Field{
		zap.Int("source_input", s.Source.Input),
		zap.Int("source_valid", s.Source.Valid),
		zap.Int("source_invalid", s.Source.Invalid),
		zap.Int("max_input", s.Max.Input),
		zap.Int("max_valid", s.Max.Valid),
		zap.Int("max_invalid", s.Max.Invalid),
		zap.Duration("elapsed", s.Elapsed),
	}
	if len(s.Source.Reasons) > 0 {
		fields = append(fields, zap.Any("source_reasons", s.Source.Reasons))
	}
	if len(s.Max.Reasons) > 0 {
		fields = append(fields, zap.Any("max_reasons", s.Max.Reasons))
	}
	for _, side := range []struct {
		label  string
		report SideReport
	}{{"source", s.Source}, {"max", s.Max}} {
		if side.report.InconsistenciesPath != "" {
			fields = append(fields, zap.String(side.label+"_inconsistencies", side.report.InconsistenciesPath))
		}
		if side.report.EnrichmentPath != "" {
			fields = append(fields, zap.String(side.label+"_enrichment", side.report.EnrichmentPath))
		}
	}
	for _, d := range s.Directions {
		fields = append(fields, zap.Any(d.Name, d.Buckets), zap.String(d.Name+"_archive", d.ArchivePath))
	}
	log.Info("pipeline finished", fields...)
}
