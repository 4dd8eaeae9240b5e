package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/intelicampusai/vex5hub-site/internal/domain/event"
	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	matchmock "github.com/intelicampusai/vex5hub-site/internal/mocks/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

func TestMatchWriter_Write_OrderUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	writer := NewMatchWriter(repo, logging.NewNop())
	m := qualificationMatch()

	repo.
		On("PutEventRecord", ctx, match.EventRecord{CanonicalMatch: m}).
		Return(nil).
		Once()
	repo.
		On("PutTeamRecord", ctx, mock.MatchedBy(func(r match.TeamRecord) bool {
			return r.Identity == m.Identity && r.EventStart == "2026-02-01T00:00:00Z"
		})).
		Return(nil).
		Times(3)

	ev := event.Event{SKU: m.EventSKU, Start: "2026-02-01T00:00:00Z"}
	if err := writer.Write(ctx, m, ev); err != nil {
		t.Fatalf("write match: %v", err)
	}
}

func TestMatchWriter_Write_EventRecordFailureStopsFanoutUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	writer := NewMatchWriter(repo, logging.NewNop())
	m := qualificationMatch()

	storeErr := fmt.Errorf("%w: table throttled", ErrDependencyUnavailable)
	repo.
		On("PutEventRecord", ctx, match.EventRecord{CanonicalMatch: m}).
		Return(storeErr).
		Once()

	err := writer.Write(ctx, m, event.Event{SKU: m.EventSKU})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	repo.AssertNotCalled(t, "PutTeamRecord", mock.Anything, mock.Anything)
}
