// Package backup keeps exported snapshots in a directory or an S3 bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"tourops/internal/config"
	"tourops/internal/model"
)

var (
	ErrNotFound    = errors.New("backup not found")
	ErrInvalidName = errors.New("invalid backup name")
)

const (
	namePrefix = "tourops-"
	nameSuffix = ".json"
	nameLayout = "20060102-150405.000"
)

// Info describes a stored backup.
type Info struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists snapshots under generated names.
type Store interface {
	Driver() string
	Save(ctx context.Context, snap *model.Snapshot) (Info, error)
	// List returns backups newest first.
	List(ctx context.Context) ([]Info, error)
	Load(ctx context.Context, name string) (*model.Snapshot, error)
}

// New opens the store selected by cfg.Driver. The "none" driver returns a
// nil Store and no error.
func New(ctx context.Context, cfg config.BackupConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.BackupDriverNone:
		return nil, nil
	case config.BackupDriverFS:
		return NewFS(cfg.Dir)
	case config.BackupDriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.Driver)
	}
}

// Name derives the backup name from the snapshot time.
func Name(at time.Time) string {
	return namePrefix + at.UTC().Format(nameLayout) + nameSuffix
}

// parseName validates name and returns the time encoded in it.
func parseName(name string) (time.Time, error) {
	if path.Base(name) != name || strings.ContainsAny(name, `/\`) ||
		!strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
	at, err := time.Parse(nameLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return at, nil
}

func encode(snap *model.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(name string, data []byte) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", name, err)
	}
	return &snap, nil
}

func newestFirst(infos []Info) {
	slices.SortFunc(infos, func(a, b Info) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
