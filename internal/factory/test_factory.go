package factory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcoot/partygame/internal/dependencies/mocks"
	"github.com/mcoot/partygame/internal/metrics"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/storage/memory"
	"github.com/mcoot/partygame/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, metrics.New(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestCatalog seeds the shared catalog with one challenge per topology
func (t *TestApp) LoadTestCatalog(ctx context.Context) ([]model.Challenge, error) {
	challenges := []model.Challenge{
		{
			ID:         "sing-off",
			Title:      "Sing-off",
			Topology:   model.TopologySolo,
			PointValue: 2,
			Reusable:   true,
		},
		{
			ID:         "arm-wrestle",
			Title:      "Arm wrestle",
			Topology:   model.TopologyPairwise,
			PointValue: 3,
		},
		{
			ID:         "relay",
			Title:      "Relay",
			Topology:   model.TopologyTeam,
			PointValue: 4,
		},
		{
			ID:         "trivia",
			Title:      "Trivia",
			Topology:   model.TopologyAllVsAll,
			PointValue: 1,
			Quiz:       true,
			Settings:   model.NewChallengeSettings(json.RawMessage(`{"type":"trivia","questions":10}`)),
		},
	}
	return t.CatalogService.Add(ctx, challenges)
}
