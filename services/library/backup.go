package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const backupPrefix = "library_content_"

// Backup writes a consistent snapshot of the database into dir using
// VACUUM INTO, pruning old snapshots beyond keep. Returns the path of
// the new snapshot.
func (s Service) Backup(ctx context.Context, dir string, keep int) (string, error) {
	ctx, span := tracer.Start(ctx, "Backup")
	defer span.End()

	err := os.MkdirAll(dir, 0777)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("backup: %w", err)
	}

	name := backupPrefix + time.Now().Format("20060102_150405") + ".db"
	path := filepath.Join(dir, name)

	_, err = s.db.ExecContext(ctx, "VACUUM INTO ?", path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("backup: %w", err)
	}
	span.SetAttributes(attribute.String("path", path))
	slog.InfoContext(ctx, "database backed up", "path", path)

	if keep > 0 {
		err = pruneBackups(dir, keep)
		if err != nil {
			slog.WarnContext(ctx, "failed to prune old backups", "err", err)
		}
	}
	return path, nil
}

func pruneBackups(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var snapshots []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, ".db") {
			snapshots = append(snapshots, name)
		}
	}
	if len(snapshots) <= keep {
		return nil
	}

	// names embed timestamps so lexical order is chronological
	sort.Strings(snapshots)
	for _, name := range snapshots[:len(snapshots)-keep] {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil {
			return err
		}
	}
	return nil
}
