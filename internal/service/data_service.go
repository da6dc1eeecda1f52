package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourops/internal/backup"
	"tourops/internal/model"
	"tourops/internal/repository"

	"go.uber.org/zap"
)

// ErrBackupsDisabled is returned by the backup operations when no backup
// driver is configured.
var ErrBackupsDisabled = errors.New("backups are not configured")

// ImportResult reports what a bulk write stored.
type ImportResult struct {
	Counts map[model.Kind]int `json:"counts"`
}

// DataService runs the whole-store operations.
type DataService struct {
	ds      repository.DataStore
	backups backup.Store
	notify  Notifier
	log     *zap.Logger
}

// NewDataService builds the service. backups may be nil.
func NewDataService(ds repository.DataStore, backups backup.Store, notify Notifier, log *zap.Logger) *DataService {
	return &DataService{ds: ds, backups: backups, notify: orNop(notify), log: log}
}

func (s *DataService) Backend() repository.Backend { return s.ds.Backend() }

func (s *DataService) Export(ctx context.Context) (*model.Snapshot, error) {
	return s.ds.ExportData(ctx)
}

// Import adds the snapshot to the current data. Nothing is written when any
// record is rejected.
func (s *DataService) Import(ctx context.Context, snap *model.Snapshot) (*ImportResult, error) {
	start := time.Now()
	if err := s.ds.ImportData(ctx, snap); err != nil {
		return nil, err
	}
	res := &ImportResult{Counts: snap.Count()}
	s.log.Info("snapshot imported",
		zap.Any("counts", res.Counts),
		zap.Duration("took", time.Since(start)))
	s.publishAll(model.ActionImported)
	return res, nil
}

func (s *DataService) Clear(ctx context.Context) error {
	if err := s.ds.ClearAllData(ctx); err != nil {
		return err
	}
	s.log.Warn("all data cleared", zap.String("backend", string(s.ds.Backend())))
	s.publishAll(model.ActionCleared)
	return nil
}

func (s *DataService) CreateBackup(ctx context.Context) (backup.Info, error) {
	if s.backups == nil {
		return backup.Info{}, ErrBackupsDisabled
	}
	snap, err := s.ds.ExportData(ctx)
	if err != nil {
		return backup.Info{}, err
	}
	info, err := s.backups.Save(ctx, snap)
	if err != nil {
		return backup.Info{}, err
	}
	s.log.Info("backup created",
		zap.String("name", info.Name),
		zap.String("driver", s.backups.Driver()),
		zap.Int64("size", info.Size))
	return info, nil
}

func (s *DataService) ListBackups(ctx context.Context) ([]backup.Info, error) {
	if s.backups == nil {
		return nil, ErrBackupsDisabled
	}
	return s.backups.List(ctx)
}

// RestoreBackup replaces the whole store with the named backup.
func (s *DataService) RestoreBackup(ctx context.Context, name string) (*ImportResult, error) {
	if s.backups == nil {
		return nil, ErrBackupsDisabled
	}
	snap, err := s.backups.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.ds.ReplaceData(ctx, snap); err != nil {
		return nil, fmt.Errorf("restore %s: %w", name, err)
	}
	res := &ImportResult{Counts: snap.Count()}
	s.log.Info("backup restored", zap.String("name", name), zap.Any("counts", res.Counts))
	s.publishAll(model.ActionImported)
	return res, nil
}

func (s *DataService) publishAll(action model.ChangeAction) {
	for _, k := range model.MasterKinds {
		s.notify.Publish(k, action, "")
	}
	s.notify.Publish(model.KindTour, action, "")
}
