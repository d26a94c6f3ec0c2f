package collection

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"votd/internal/logging"
)

// MediaHas reports whether a media file called filename is stored.
func (c *Collection) MediaHas(ctx context.Context, filename string) (bool, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM media WHERE filename = ?", filename).Scan(&count); err != nil {
		return false, fmt.Errorf("check media %q: %w", filename, err)
	}
	return count > 0, nil
}

// MediaAdd stores the file at path and returns the name notes should
// reference. Re-adding identical content returns the existing name; a
// different file with a taken name is stored under a hashed variant.
func (c *Collection) MediaAdd(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read media %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	name := filepath.Base(path)

	var stored string
	err = c.db.QueryRowContext(ctx, "SELECT sha256 FROM media WHERE filename = ?", name).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return "", fmt.Errorf("check media %q: %w", name, err)
	case stored == digest:
		return name, nil
	default:
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "-" + digest[:8] + ext
	}

	if _, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO media (filename, data, sha256, added_at) VALUES (?, ?, ?, ?)",
		name, data, digest, c.timestamp()); err != nil {
		return "", fmt.Errorf("store media %q: %w", name, err)
	}
	c.logger.Debug("media added", logging.String("filename", name), logging.Int("bytes", len(data)))
	return name, nil
}

// MediaData returns the stored bytes of filename.
func (c *Collection) MediaData(ctx context.Context, filename string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM media WHERE filename = ?", filename).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("media %q: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read media %q: %w", filename, err)
	}
	return data, nil
}

// SoundRef formats the field markup that plays filename.
func SoundRef(filename string) string {
	return "[sound:" + filename + "]"
}
