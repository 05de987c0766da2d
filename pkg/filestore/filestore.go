package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const poolSize = 2

// Store moves uploaded files from the temp dir into the image dir and
// deletes stored files. The work runs on a small worker pool and failures
// are logged, never returned: image bookkeeping must not fail the request
// that triggered it.
type Store struct {
	imageDir string
	pool     WorkerPoolI
}

func New(imageDir string) *Store {
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		zap.L().Error("can't create image dir", zap.String("dir", imageDir), zap.Error(err))
	}
	return &Store{
		imageDir: imageDir,
		pool:     NewWorkerPool(poolSize),
	}
}

// Move relocates src into the image dir under name.
func (s *Store) Move(src, name string) {
	dst := filepath.Join(s.imageDir, name)
	err := s.pool.AddTask(context.Background(), func() error {
		return moveFile(src, dst)
	})
	if err != nil {
		zap.L().Error("can't schedule file move", zap.String("src", src), zap.Error(err))
	}
}

// Remove deletes a stored file by name.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(s.imageDir, name)
	err := s.pool.AddTask(context.Background(), func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("can't remove %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		zap.L().Error("can't schedule file removal", zap.String("path", path), zap.Error(err))
	}
}

func (s *Store) Close() {
	s.pool.Close()
}

// moveFile renames when possible, copies across filesystems otherwise.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("can't move %s to %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("can't remove temp file %s: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
