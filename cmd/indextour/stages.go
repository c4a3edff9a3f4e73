package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex"
	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/dataset"
)

// generatorSeed keeps the offline dataset identical between runs so query
// selectivity stays comparable.
const generatorSeed = 20230601

type tour struct {
	cfg     config.TourConfig
	client  *docdex.Client
	logger  *zap.Logger
	metrics *tourMetrics

	// probe values the query stages filter on, picked from the loaded
	// dataset.
	probeField1 string
	probeField2 int

	report report
}

func (t *tour) run(ctx context.Context) error {
	start := time.Now()

	if err := t.stageSetup(ctx); err != nil {
		return err
	}
	if err := t.stageLoad(ctx); err != nil {
		return err
	}
	if err := t.stageQueries(ctx, phaseIndexed); err != nil {
		return err
	}
	if err := t.stageReplacePolicy(ctx, phaseNone, docdex.IndexingPolicy{
		IndexingMode: docdex.IndexingModeNone,
		Automatic:    false,
	}); err != nil {
		return err
	}
	if err := t.stageQueries(ctx, phaseNone); err != nil {
		return err
	}
	if err := t.stageReplacePolicy(ctx, phaseExcluded, docdex.IndexingPolicy{
		IndexingMode:  docdex.IndexingModeConsistent,
		Automatic:     true,
		IncludedPaths: []docdex.IncludedPath{{Path: "/*"}},
		ExcludedPaths: []docdex.ExcludedPath{{Path: "/field2/?"}},
	}); err != nil {
		return err
	}
	if err := t.stageQueries(ctx, phaseExcluded); err != nil {
		return err
	}

	t.report.print(time.Since(start))

	return t.stageTeardown(ctx)
}

// stageSetup creates the database and container, tolerating leftovers from
// a previous run.
func (t *tour) stageSetup(ctx context.Context) error {
	db, err := t.client.Databases().CreateIfNotExists(ctx, t.cfg.Database)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	t.logger.Info("Database ready", zap.String("id", db.ID))

	coll, err := t.client.Containers(t.cfg.Database).CreateIfNotExists(
		ctx, t.cfg.Container, docdex.WithPartitionKey("/id"),
	)
	if err != nil {
		return fmt.Errorf("setup container: %w", err)
	}
	t.logger.Info("Container ready",
		zap.String("id", coll.ID),
		zap.String("indexing_mode", string(coll.IndexingPolicy.IndexingMode)),
	)
	return nil
}

// stageLoad inserts the sample documents, skipping the load when the
// container already holds enough from a previous run.
func (t *tour) stageLoad(ctx context.Context) error {
	items := t.client.Items(t.cfg.Database, t.cfg.Container)

	existing, err := items.Count(ctx)
	if err != nil {
		return fmt.Errorf("count existing documents: %w", err)
	}

	docs, err := t.sampleDocuments(ctx)
	if err != nil {
		return err
	}
	t.probeField1 = docs[0].Field1
	t.probeField2 = docs[0].Field2

	if existing >= len(docs) {
		t.logger.Info("Container already loaded, skipping insert",
			zap.Int("existing", existing))
		return nil
	}

	start := time.Now()
	var totalCharge float64
	for i, doc := range docs[existing:] {
		resp, err := items.Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("insert document %d: %w", existing+i, err)
		}
		totalCharge += resp.RequestCharge
		t.metrics.docsLoaded.Inc()
		t.metrics.loadCharge.Add(resp.RequestCharge)

		if n := existing + i + 1; t.cfg.ProgressEvery > 0 && n%t.cfg.ProgressEvery == 0 {
			t.logger.Info("Loading documents",
				zap.Int("inserted", n),
				zap.Int("total", len(docs)),
				zap.Float64("request_charge", totalCharge),
			)
		}
	}

	elapsed := time.Since(start)
	t.logger.Info("Dataset loaded",
		zap.Int("documents", len(docs)-existing),
		zap.Float64("request_charge", totalCharge),
		zap.Duration("elapsed", elapsed),
	)
	t.report.loadCharge = totalCharge
	t.report.loadDuration = elapsed
	t.report.loadCount = len(docs) - existing
	return nil
}

// sampleDocuments fetches the remote dataset when a URL is configured and
// generates documents locally otherwise.
func (t *tour) sampleDocuments(ctx context.Context) ([]dataset.Document, error) {
	if t.cfg.DatasetURL != "" {
		docs, err := dataset.Fetch(ctx, nil, t.cfg.DatasetURL)
		if err != nil {
			return nil, fmt.Errorf("fetch dataset: %w", err)
		}
		if len(docs) > t.cfg.DocumentCount {
			docs = docs[:t.cfg.DocumentCount]
		}
		t.logger.Info("Fetched remote dataset", zap.Int("documents", len(docs)))
		return docs, nil
	}
	return dataset.Generate(t.cfg.DocumentCount, generatorSeed), nil
}

// stageQueries measures the two probe queries under the current policy.
func (t *tour) stageQueries(ctx context.Context, phase string) error {
	items := t.client.Items(t.cfg.Database, t.cfg.Container)

	probes := []struct {
		label string
		query string
		opts  []docdex.QueryOption
	}{
		{
			label: "string equality (field1)",
			query: "SELECT * FROM c WHERE c.field1 = @value",
			opts: []docdex.QueryOption{
				docdex.WithParameter("@value", t.probeField1),
				docdex.WithCrossPartition(),
			},
		},
		{
			label: "number equality (field2)",
			query: "SELECT * FROM c WHERE c.field2 = @value",
			opts: []docdex.QueryOption{
				docdex.WithParameter("@value", t.probeField2),
				docdex.WithCrossPartition(),
			},
		},
	}

	for _, p := range probes {
		res, err := items.Query(ctx, p.query, p.opts...)
		if err != nil {
			return fmt.Errorf("query %q under policy %s: %w", p.label, phase, err)
		}
		t.logger.Info("Query measured",
			zap.String("phase", phase),
			zap.String("query", p.label),
			zap.Int("matches", res.Count),
			zap.Float64("request_charge", res.RequestCharge),
			zap.Duration("latency", res.Duration),
		)
		t.metrics.queryCharge.WithLabelValues(phase, p.label).Set(res.RequestCharge)
		t.metrics.queryDuration.WithLabelValues(phase, p.label).Observe(res.Duration.Seconds())
		t.report.add(measurement{
			phase:    phase,
			query:    p.label,
			matches:  res.Count,
			charge:   res.RequestCharge,
			duration: res.Duration,
		})
	}
	return nil
}

// stageReplacePolicy swaps the indexing policy and blocks until the service
// finishes rebuilding the index.
func (t *tour) stageReplacePolicy(ctx context.Context, phase string, policy docdex.IndexingPolicy) error {
	containers := t.client.Containers(t.cfg.Database)

	if _, err := containers.ReplaceIndexingPolicy(ctx, t.cfg.Container, policy); err != nil {
		return fmt.Errorf("replace indexing policy (%s): %w", phase, err)
	}
	t.logger.Info("Indexing policy replaced",
		zap.String("phase", phase),
		zap.String("mode", string(policy.IndexingMode)),
	)

	interval := time.Duration(t.cfg.PollIntervalSec) * time.Second
	start := time.Now()
	err := containers.WaitForIndexTransformation(ctx, t.cfg.Container, interval)
	if err != nil {
		return fmt.Errorf("wait for index transformation (%s): %w", phase, err)
	}
	t.logger.Info("Index transformation complete",
		zap.String("phase", phase),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// stageTeardown removes the database unless the run keeps its resources.
func (t *tour) stageTeardown(ctx context.Context) error {
	if t.cfg.KeepResources {
		t.logger.Info("Keeping database and container",
			zap.String("database", t.cfg.Database))
		return nil
	}
	if err := t.client.Databases().Delete(ctx, t.cfg.Database); err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	t.logger.Info("Database deleted", zap.String("database", t.cfg.Database))
	return nil
}
