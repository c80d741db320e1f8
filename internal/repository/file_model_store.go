package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/ml"
	applogger "FinEdge/pkg/logger"
)

// FileModelStore persists model bundles as one file per symbol. Writes go
// through a temp file and rename, so a reader never sees a torn bundle and
// the model and scaler can never get out of sync.
type FileModelStore struct {
	dir string
	l   *applogger.Logger
}

func NewFileModelStore(dir string) (*FileModelStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FileModelStore{dir: dir}, nil
}

// SetLogger injects a structured logger.
func (s *FileModelStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *FileModelStore) path(symbol string) string {
	return filepath.Join(s.dir, strings.ToUpper(symbol)+".model")
}

func (s *FileModelStore) Save(_ context.Context, symbol string, b *ml.Bundle) error {
	data, err := b.Encode()
	if err != nil {
		return err
	}

	tmp := s.path(symbol) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path(symbol)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace model file: %w", err)
	}

	if s.l != nil {
		s.l.Debug("model bundle saved",
			applogger.String("symbol", symbol),
			applogger.Int("bytes", len(data)))
	}
	return nil
}

func (s *FileModelStore) Load(_ context.Context, symbol string) (*ml.Bundle, error) {
	data, err := os.ReadFile(s.path(symbol))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", models.ErrModelNotFound, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return ml.DecodeBundle(data)
}
