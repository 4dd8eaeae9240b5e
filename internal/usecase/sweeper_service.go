package usecase

import (
	"context"
	"fmt"

	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Scanned      int
	Legacy       int
	Deleted      int
	Unclassified int
}

// SweeperService removes match items written under the obsolete key
// encoding. Classification is the encoder's segment-count contract, never an
// ad hoc heuristic; anything it cannot classify is left alone.
type SweeperService struct {
	store  match.Sweepable
	logger *logging.Logger
}

func NewSweeperService(store match.Sweepable, logger *logging.Logger) *SweeperService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SweeperService{store: store, logger: logger}
}

// Sweep scans all match-kind items and deletes those with a legacy key
// shape. With dryRun set it only reports what would be deleted.
func (s *SweeperService) Sweep(ctx context.Context, dryRun bool) (SweepReport, error) {
	ctx, span := startStageSpan(ctx, "sweep")
	defer span.End()

	keys, err := s.store.ScanMatchKeys(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("scan match keys: %w", err)
	}

	report := SweepReport{Scanned: len(keys)}
	for _, key := range keys {
		shape, err := match.ClassifySortKey(key.Partition, key.Sort)
		if err != nil {
			report.Unclassified++
			s.logger.WarnContext(ctx, "leaving unclassifiable item in place",
				"pk", key.Partition, "sk", key.Sort, "error", err)
			continue
		}
		if shape != match.KeyShapeLegacy {
			continue
		}

		report.Legacy++
		if dryRun {
			s.logger.InfoContext(ctx, "would delete legacy item", "pk", key.Partition, "sk", key.Sort)
			continue
		}
		if err := s.store.DeleteByKey(ctx, key); err != nil {
			return report, fmt.Errorf("delete legacy item pk=%s sk=%s: %w", key.Partition, key.Sort, err)
		}
		report.Deleted++
	}

	s.logger.InfoContext(ctx, "sweep complete",
		"scanned", report.Scanned,
		"legacy", report.Legacy,
		"deleted", report.Deleted,
		"unclassified", report.Unclassified,
		"dry_run", dryRun,
	)
	return report, nil
}
