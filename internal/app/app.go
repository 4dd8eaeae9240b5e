// Package app assembles the updater's dependency graph.
package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/intelicampusai/vex5hub-site/external/robotevents"
	"github.com/intelicampusai/vex5hub-site/internal/config"
	"github.com/intelicampusai/vex5hub-site/internal/infrastructure/repository/dynamo"
	"github.com/intelicampusai/vex5hub-site/internal/infrastructure/secrets"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
	"github.com/intelicampusai/vex5hub-site/internal/platform/resilience"
	"github.com/intelicampusai/vex5hub-site/internal/usecase"
)

// App holds the assembled services a command runs.
type App struct {
	Sync    *usecase.SyncService
	Sweeper *usecase.SweeperService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	store := dynamo.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.TableName)
	matchRepo := dynamo.NewMatchRepository(store)
	teamRepo := dynamo.NewTeamRepository(store)
	eventRepo := dynamo.NewEventRepository(store)

	credentials := secrets.NewManagerSource(secretsmanager.NewFromConfig(awsCfg), cfg.SecretName)

	provider := robotevents.NewClient(robotevents.ClientConfig{
		BaseURL:     cfg.RobotEventsBaseURL,
		Credentials: credentials,
		Timeout:     cfg.RobotEventsTimeout,
		MaxRetries:  cfg.RobotEventsMaxRetries,
		MaxPages:    cfg.RobotEventsMaxPages,
		RateRPS:     cfg.RobotEventsRateRPS,
		RateBurst:   cfg.RobotEventsRateBurst,
		Logger:      logger,
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          cfg.CircuitEnabled,
			FailureThreshold: cfg.CircuitFailureCount,
			OpenTimeout:      cfg.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CircuitHalfOpenMaxReq,
		},
	})

	roster := usecase.NewRosterService(provider, teamRepo, usecase.RosterConfig{
		SeasonID:       cfg.SeasonID,
		SkillsSeasonID: cfg.SkillsSeasonID,
		TopTeamCount:   cfg.TopTeamCount,
		GradeLevels:    cfg.GradeLevels,
		WorldsSKUs:     cfg.WorldsSKUs,
	}, logger)

	writer := usecase.NewMatchWriter(matchRepo, logger)

	sync := usecase.NewSyncService(
		provider,
		credentials,
		roster,
		writer,
		eventRepo,
		noopInvalidator{},
		usecase.SyncConfig{
			SeasonID: cfg.SeasonID,
			Workers:  cfg.SyncWorkers,
			Deadline: cfg.SyncDeadline,
		},
		logger,
	)

	return &App{
		Sync:    sync,
		Sweeper: usecase.NewSweeperService(matchRepo, logger),
	}, nil
}

// noopInvalidator stands in until the CDN invalidation hook is wired.
type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, []string) error { return nil }
