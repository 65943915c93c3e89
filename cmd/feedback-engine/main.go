// Command feedback-engine runs the aggregation engine over a YAML
// snapshot file: the survey definition, subject panels, and frozen
// response set in one document. Results for every subject are printed
// as JSON, and optionally persisted to PostgreSQL instead of memory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/orbita-hq/feedback-engine/infrastructure/middleware"
	"github.com/orbita-hq/feedback-engine/infrastructure/storage/inmem"
	"github.com/orbita-hq/feedback-engine/infrastructure/storage/postgres"
	"github.com/orbita-hq/feedback-engine/internal/engine"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

func main() {
	var (
		snapshotPath = flag.String("snapshot", "", "Path to the YAML run snapshot (required)")
		configPath   = flag.String("config", "", "Path to the engine configuration YAML (optional)")
		postgresDSN  = flag.String("postgres", "", "PostgreSQL DSN for result persistence (optional; in-memory when unset)")
		verbose      = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, *snapshotPath, *configPath, *postgresDSN); err != nil {
		log.Fatal().Err(err).Msg("aggregation failed")
	}
}

func run(ctx context.Context, log zerolog.Logger, snapshotPath, configPath, postgresDSN string) error {
	cfg := engine.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = engine.LoadConfigFile(configPath); err != nil {
			return err
		}
	}

	snap, err := engine.LoadSnapshotFile(snapshotPath)
	if err != nil {
		return err
	}

	survey := snap.DomainSurvey()
	store := inmem.NewStore()
	store.PutSurvey(survey.ID, survey.TraitWeights, snap.DomainTraits())
	for _, subjectID := range snap.SubjectIDs() {
		store.PutPanel(survey.ID, subjectID, snap.DomainPanel(subjectID))
		responses, err := snap.DomainResponses(subjectID)
		if err != nil {
			return err
		}
		store.PutResponses(survey.ID, subjectID, responses)
	}

	var results ports.ResultStore = inmem.NewResultStore()
	if postgresDSN != "" {
		db, err := postgres.Open(ctx, postgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pg := postgres.NewResultStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		results = pg
	}

	orc, err := engine.NewOrchestrator(cfg, engine.Stores{
		Responses: store,
		Surveys:   store,
		Panels:    store,
		Results:   results,
	}, log, middleware.NewPrometheusMetrics(nil), middleware.NewOTelRunObserver())
	if err != nil {
		return err
	}

	outcomes, err := engine.NewBatchRunner(orc).RunAll(ctx, survey.ID, snap.SubjectIDs())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failures := 0
	for _, oc := range outcomes {
		if oc.Err != nil {
			failures++
			log.Error().Err(oc.Err).Str("subject_id", oc.SubjectID).Msg("subject failed")
			continue
		}
		if err := enc.Encode(oc.Result); err != nil {
			return err
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d subjects failed", failures, len(outcomes))
	}
	return nil
}
