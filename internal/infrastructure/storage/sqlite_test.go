package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aynu/chartcore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDrawingRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	d := &domain.DrawingObject{
		ID:    "d1",
		Pair:  "AMR/NVR",
		Type:  domain.DrawTrendline,
		P1:    domain.Point{Time: 1_700_000_000_000, Price: 4250.5},
		P2:    domain.Point{Time: 1_700_000_600_000, Price: 4300},
		Color: "#eab308",
	}
	require.NoError(t, store.SaveDrawing(ctx, d))

	got, err := store.ListDrawings(ctx, "AMR/NVR")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *d, got[0])

	// Drawings are keyed by pair.
	other, err := store.ListDrawings(ctx, "IONX/NVR")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, store.DeleteDrawing(ctx, "d1"))
	got, err = store.ListDrawings(ctx, "AMR/NVR")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveDrawingUpsertsByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	d := &domain.DrawingObject{ID: "d1", Pair: "AMR/NVR", Type: domain.DrawRect, Color: "#111111"}
	require.NoError(t, store.SaveDrawing(ctx, d))
	d.Color = "#222222"
	require.NoError(t, store.SaveDrawing(ctx, d))

	got, err := store.ListDrawings(ctx, "AMR/NVR")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "#222222", got[0].Color)
}

func TestViewportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	missing, err := store.GetViewport(ctx, "AMR/NVR")
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown pair yields nil, not an error")

	require.NoError(t, store.SaveViewport(ctx, "AMR/NVR", domain.ViewportState{Offset: 12, CandleWidth: 20}))
	require.NoError(t, store.SaveViewport(ctx, "AMR/NVR", domain.ViewportState{Offset: 30, CandleWidth: 8}))

	got, err := store.GetViewport(ctx, "AMR/NVR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 30.0, got.Offset)
	assert.Equal(t, 8.0, got.CandleWidth)
}
