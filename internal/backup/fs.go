package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tourops/internal/model"
)

// FSStore writes one JSON file per backup into a directory.
type FSStore struct {
	dir string
}

func NewFS(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New("backup dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Driver() string { return "fs" }

func (s *FSStore) Save(_ context.Context, snap *model.Snapshot) (Info, error) {
	data, err := encode(snap)
	if err != nil {
		return Info{}, err
	}
	name := Name(snap.ExportedAt)

	// written to a temp file, then renamed into place
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return Info{}, fmt.Errorf("save backup: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Info{}, fmt.Errorf("save backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Info{}, fmt.Errorf("save backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return Info{}, fmt.Errorf("save backup: %w", err)
	}
	at, _ := parseName(name)
	return Info{Name: name, Size: int64(len(data)), CreatedAt: at}, nil
}

func (s *FSStore) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		at, err := parseName(e.Name())
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup %s: %w", e.Name(), err)
		}
		infos = append(infos, Info{Name: e.Name(), Size: fi.Size(), CreatedAt: at})
	}
	newestFirst(infos)
	return infos, nil
}

func (s *FSStore) Load(_ context.Context, name string) (*model.Snapshot, error) {
	if _, err := parseName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", name, err)
	}
	return decode(name, data)
}
