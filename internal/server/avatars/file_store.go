package avatars

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

const filePerm = 0o644

// FileStore writes avatars to <dir>/<id>.png.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) path(userID string) (string, error) {
	if !ValidID(userID) {
		return "", fmt.Errorf("invalid avatar id %q", userID)
	}
	return filepath.Join(s.dir, fileName(userID)), nil
}

func (s *FileStore) Put(_ context.Context, userID string, data []byte) (models.Avatar, error) {
	p, err := s.path(userID)
	if err != nil {
		return models.Avatar{}, err
	}
	if err := filex.WriteFileAtomic(p, data, filePerm); err != nil {
		return models.Avatar{}, err
	}
	return models.Avatar{ContentType: ContentType, Key: fileName(userID)}, nil
}

func (s *FileStore) Get(_ context.Context, userID string, _ models.Avatar) ([]byte, error) {
	p, err := s.path(userID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotStored
	}
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	return data, nil
}

func (s *FileStore) Delete(_ context.Context, userID string, _ models.Avatar) error {
	p, err := s.path(userID)
	if err != nil {
		return err
	}
	return filex.RemoveIfExists(p)
}
