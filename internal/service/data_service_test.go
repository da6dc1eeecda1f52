package service

import (
	"context"
	"testing"

	"tourops/internal/backup"
	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDataService_BackupsDisabled(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	_, err := svc.Data.CreateBackup(ctx)
	assert.ErrorIs(t, err, ErrBackupsDisabled)
	_, err = svc.Data.ListBackups(ctx)
	assert.ErrorIs(t, err, ErrBackupsDisabled)
	_, err = svc.Data.RestoreBackup(ctx, "tourops-20250101-000000.000.json")
	assert.ErrorIs(t, err, ErrBackupsDisabled)
}

func TestDataService_ExportImport(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)

	snap, err := f.svc.Data.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Count()[model.KindTour])

	other, rec := newTestServices(t, nil)
	res, err := other.Data.Import(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts[model.KindGuide])
	assert.Equal(t, 1, res.Counts[model.KindTour])
	assert.Len(t, rec.events, len(model.MasterKinds)+1)
	assert.Equal(t, event{model.KindTour, model.ActionImported, ""}, rec.last())

	got, err := other.Tours.Get(ctx, f.tour.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "NB-2504", got.TourCode)

	_, err = other.Data.Import(ctx, snap)
	assert.Error(t, err, "importing the same records twice fails")
}

func TestDataService_Clear(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)

	require.NoError(t, f.svc.Data.Clear(ctx))
	assert.Equal(t, event{model.KindTour, model.ActionCleared, ""}, f.rec.last())

	snap, err := f.svc.Data.Export(ctx)
	require.NoError(t, err)
	for kind, n := range snap.Count() {
		assert.Zero(t, n, kind)
	}
}

func TestDataService_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	store, err := backup.NewFS(t.TempDir())
	require.NoError(t, err)

	ds := newLocalStore(t)
	rec := &recorder{}
	svc := New(ds, store, rec, zap.NewNop())

	g, err := svc.Guides.Create(ctx, &model.Guide{MasterBase: model.MasterBase{Name: "Phạm Hùng"}})
	require.NoError(t, err)

	info, err := svc.Data.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Positive(t, info.Size)

	list, err := svc.Data.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.Name, list[0].Name)

	require.NoError(t, svc.Guides.Delete(ctx, g.ID.String()))
	_, err = svc.Guides.Create(ctx, &model.Guide{MasterBase: model.MasterBase{Name: "Added later"}})
	require.NoError(t, err)

	res, err := svc.Data.RestoreBackup(ctx, info.Name)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts[model.KindGuide])

	guides, total, err := svc.Guides.List(ctx, repository.ListQuery{}, firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, g.ID, guides[0].ID)

	_, err = svc.Data.RestoreBackup(ctx, "tourops-20000101-000000.000.json")
	assert.ErrorIs(t, err, backup.ErrNotFound)
	_, err = svc.Data.RestoreBackup(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, backup.ErrInvalidName)
}

func TestNotifiers_SkipsNil(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	var calls int
	ns := Notifiers{a, nil, b, NotifyFunc(func(model.Kind, model.ChangeAction, string) { calls++ })}
	ns.Publish(model.KindGuide, model.ActionDeleted, "x")

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Equal(t, 1, calls)
}
