// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

// Package storage persists trained segmentation models as opaque binary
// artifacts so a model can be reused without retraining.
//
// Models are gob-encoded, gzip-compressed, and stored with metadata
// including a SHA-256 checksum that is verified on load. Versions are
// monotonically increasing per model name; loading version 0 means
// "latest".
package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metadata describes a stored model artifact.
type Metadata struct {
	// Name identifies the model, e.g. "kmeans".
	Name string `json:"name"`

	// Version is monotonically increasing per name.
	Version int `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// Store manages model artifacts in one directory. It is safe for
// concurrent use.
type Store struct {
	baseDir string

	mu       sync.RWMutex
	versions map[string]int
}

// NewStore opens (creating if needed) a model store at baseDir and scans
// it for existing artifacts.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan model dir: %w", err)
	}
	return s, nil
}

// scan indexes existing artifact versions from filenames of the form
// {name}_v{version}.gob.gz.
func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), ".gob.gz")
		if !ok {
			continue
		}
		base, versionStr, ok := cutLast(name, "_v")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			continue
		}
		if current := s.versions[base]; version > current {
			s.versions[base] = version
		}
	}
	return nil
}

// cutLast splits s around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// storedFile is the on-disk artifact layout.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Save encodes and persists a model under the next version for name,
// returning the written metadata.
func (s *Store) Save(name string, model any, trainedAt time.Time) (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(model); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	raw := payload.Bytes()
	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	version := s.versions[name] + 1
	meta := Metadata{
		Name:      name,
		Version:   version,
		TrainedAt: trainedAt,
		SavedAt:   time.Now().UTC(),
		Checksum:  hex.EncodeToString(hash[:]),
		SizeBytes: int64(compressed.Len()),
	}

	f, err := os.Create(s.path(name, version)) //nolint:gosec // path is built from the configured model dir
	if err != nil {
		return nil, fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gob.NewEncoder(f).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return nil, fmt.Errorf("write model file: %w", err)
	}

	s.versions[name] = version
	return &meta, nil
}

// Load decodes a stored model into target. Version 0 loads the latest.
// The payload checksum is verified before decoding.
func (s *Store) Load(name string, version int, target any) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name], s.versions[name] > 0
		if !ok {
			return nil, fmt.Errorf("no stored model named %q", name)
		}
	}

	f, err := os.Open(s.path(name, version)) //nolint:gosec // path is built from the configured model dir
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	if err := gzr.Close(); err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != sf.Metadata.Checksum {
		return nil, fmt.Errorf("model %s v%d checksum mismatch", name, version)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the highest stored version for name, 0 if none.
func (s *Store) LatestVersion(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[name]
}

func (s *Store) path(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", name, version))
}
