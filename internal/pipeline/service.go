package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"normas/internal/dedup"
	"normas/internal/logger"
	"normas/internal/record"
	"normas/internal/regulation"
	"normas/internal/rules"
	"normas/internal/source"
	"normas/internal/validation"
	"normas/pkg/metrics"
)

// Service sequences one ingestion run: load rules, fetch, validate,
// partition against the existing-key snapshot, write. It keeps no state
// across runs: rules and existing keys are loaded fresh every time.
type Service struct {
	rulesPath string
	src       source.Source
	repo      regulation.Repository
	writer    *regulation.Writer
	log       logger.Logger
}

func NewService(rulesPath string, src source.Source, repo regulation.Repository, writer *regulation.Writer, log logger.Logger) *Service {
	return &Service{
		rulesPath: rulesPath,
		src:       src,
		repo:      repo,
		writer:    writer,
		log:       log,
	}
}

// Run executes one full pass. Validation rejections and duplicates are
// recovered locally; configuration, source and storage-connectivity
// failures abort the run before any partial state is left behind.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	summary := Summary{
		RunID:            uuid.NewString(),
		StartedAt:        time.Now(),
		RejectedByReason: make(map[string]int),
	}
	metrics.LastRunTimestamp.SetToCurrentTime()

	ruleSet, err := rules.Load(s.rulesPath)
	if err != nil {
		return s.fail(summary, "config", err)
	}
	s.log.Infow("Loaded validation rules",
		"run_id", summary.RunID,
		"fields", ruleSet.Fields(),
	)

	docs, err := s.src.Fetch(ctx)
	if err != nil {
		return s.fail(summary, "source", err)
	}
	summary.Received = len(docs)
	metrics.RecordsReceivedTotal.Add(float64(len(docs)))

	candidates := s.validate(docs, ruleSet, &summary)
	summary.Valid = len(candidates)

	existing, err := s.repo.ExistingKeys(ctx)
	if err != nil {
		return s.fail(summary, "storage", err)
	}
	s.log.Infow("Queried existing keys",
		"run_id", summary.RunID,
		"existing", len(existing),
	)

	fresh, duplicates := dedup.Partition(candidates, existing)
	summary.Duplicates = len(duplicates)

	report, err := s.writer.Write(ctx, fresh)
	summary.Inserted = report.Inserted
	summary.Duplicates += report.Skipped
	summary.Failed = len(report.Failures)
	if err != nil {
		return s.fail(summary, "storage", err)
	}

	summary.Duration = time.Since(summary.StartedAt)
	s.recordOutcome(summary)

	s.log.Infow("Run complete",
		"run_id", summary.RunID,
		"received", summary.Received,
		"rejected", summary.Rejected,
		"rejected_by_reason", summary.RejectedByReason,
		"valid", summary.Valid,
		"duplicates", summary.Duplicates,
		"inserted", summary.Inserted,
		"failed", summary.Failed,
		"component_rows", report.Components,
		"duration", summary.Duration.String(),
	)

	return summary, nil
}

func (s *Service) validate(docs []record.Document, ruleSet *rules.RuleSet, summary *Summary) []regulation.Regulation {
	validator := validation.NewValidator(ruleSet)
	candidates := make([]regulation.Regulation, 0, len(docs))

	for _, doc := range docs {
		validated, rejection := validator.Validate(doc)
		if rejection != nil {
			summary.Rejected++
			summary.RejectedByReason[rejection.Reason()]++
			metrics.RecordsRejectedTotal.WithLabelValues(string(rejection.Code)).Inc()
			s.log.Debugw("Rejected record",
				"run_id", summary.RunID,
				"reason", rejection.Reason(),
			)
			continue
		}

		reg, err := regulation.FromDocument(validated)
		if err != nil {
			// The rule document let through a record the storage contract
			// cannot represent. Count it as rejected, not as a write failure.
			summary.Rejected++
			summary.RejectedByReason["UNMAPPABLE"]++
			metrics.RecordsRejectedTotal.WithLabelValues("UNMAPPABLE").Inc()
			s.log.Warnw("Validated record does not map to storage schema",
				"run_id", summary.RunID,
				"error", err,
			)
			continue
		}

		candidates = append(candidates, reg)
	}

	return candidates
}

func (s *Service) fail(summary Summary, stage string, err error) (Summary, error) {
	summary.Duration = time.Since(summary.StartedAt)
	metrics.RunsTotal.WithLabelValues("failed").Inc()
	metrics.ObserveRunDuration(summary.Duration, "failed")
	s.log.Errorw("Run failed",
		"run_id", summary.RunID,
		"stage", stage,
		"error", err,
	)
	return summary, err
}

func (s *Service) recordOutcome(summary Summary) {
	metrics.RunsTotal.WithLabelValues("completed").Inc()
	metrics.ObserveRunDuration(summary.Duration, "completed")
	metrics.LastSuccessTimestamp.SetToCurrentTime()
	metrics.RecordsDuplicateTotal.Add(float64(summary.Duplicates))
	metrics.RecordsInsertedTotal.Add(float64(summary.Inserted))
	metrics.RecordsFailedTotal.Add(float64(summary.Failed))
}
