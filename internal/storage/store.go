// internal/storage/store.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/common/validation"

	"github.com/google/uuid"
)

// Store persists raw assessment payloads and owns the artifact output tree.
type Store struct {
	payloadDir string
	outputDir  string
	logger     logger.Logger
}

// PayloadInfo describes one stored payload file.
type PayloadInfo struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"sizeBytes"`
	ReceivedAt time.Time `json:"receivedAt"`
}

func NewStore(payloadDir, outputDir string, log logger.Logger) (*Store, error) {
	for _, dir := range []string{
		payloadDir,
		filepath.Join(outputDir, "charts"),
		filepath.Join(outputDir, "reports"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}

	return &Store{
		payloadDir: payloadDir,
		outputDir:  outputDir,
		logger:     log.WithFields(map[string]interface{}{"component": "store"}),
	}, nil
}

// OutputDir returns the artifact output base directory.
func (s *Store) OutputDir() string {
	return s.outputDir
}

// SavePayload persists a raw payload under a generated name and returns it.
func (s *Store) SavePayload(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", errors.NewInvalidPayloadError("payload is not valid JSON")
	}

	name := uuid.New().String() + ".json"
	path := filepath.Join(s.payloadDir, name)
	if err := WriteFileAtomic(path, data); err != nil {
		return "", errors.NewArtifactWriteError(path, err)
	}

	s.logger.Info("payload stored", map[string]interface{}{
		"name": name,
		"size": len(data),
	})
	return name, nil
}

// ListPayloads returns stored payloads, newest first.
func (s *Store) ListPayloads() ([]PayloadInfo, error) {
	entries, err := os.ReadDir(s.payloadDir)
	if err != nil {
		return nil, fmt.Errorf("read payload dir: %w", err)
	}

	infos := make([]PayloadInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, PayloadInfo{
			Name:       entry.Name(),
			SizeBytes:  fi.Size(),
			ReceivedAt: fi.ModTime().UTC(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ReceivedAt.After(infos[j].ReceivedAt)
	})
	return infos, nil
}

// ReadPayload returns the contents of a stored payload by name.
func (s *Store) ReadPayload(name string) ([]byte, error) {
	if !validation.ValidatePayloadName(name) {
		return nil, errors.NewPayloadNotFoundError(name)
	}

	data, err := os.ReadFile(filepath.Join(s.payloadDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPayloadNotFoundError(name)
		}
		return nil, fmt.Errorf("read payload %s: %w", name, err)
	}
	return data, nil
}

// ArtifactPath resolves a report artifact by key and kind ("charts" or
// "reports"). Keys are validated so callers can pass them straight from
// request paths.
func (s *Store) ArtifactPath(kind, key, ext string) (string, error) {
	if !validation.ValidateReportKey(key) {
		return "", errors.NewPayloadNotFoundError(key)
	}
	path := filepath.Join(s.outputDir, kind, key+ext)
	if _, err := os.Stat(path); err != nil {
		return "", errors.NewPayloadNotFoundError(key)
	}
	return path, nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a concurrent reader never sees a partial file.
// The temp file is removed when any step fails.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
