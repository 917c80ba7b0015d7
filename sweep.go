package quire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SweepResult summarises an orphan sweep.
type SweepResult struct {
	Scanned int
	Orphans []string
	Deleted int
}

// Sweep finds blobs that no record references any more and deletes them unless dryRun is set.
//
// Delete removes content before rows, so a failed blob delete leaves a blob behind with no row.
// A blob is an orphan when no row has its id, or the row lives in a different workspace.
// Blobs under either the notes or the files subpath count as referenced by a live row, since
// the files subpath is the legacy read fallback for every type.
//
// Paths that do not parse as blob addresses are skipped and logged. The sweep stops at the
// first store error; blobs deleted before that point stay deleted.
func (s *Service) Sweep(ctx context.Context, dryRun bool) (SweepResult, error) {
	if err := ctx.Err(); err != nil {
		return SweepResult{}, fmt.Errorf("sweep: %w", err)
	}

	entries, err := s.storage.List(ctx, blobRoot)
	if err != nil {
		return SweepResult{}, storeErr("sweep: list blobs", err)
	}

	var res SweepResult
	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return res, fmt.Errorf("sweep: %w", err)
		}
		res.Scanned++

		addr, parseErr := ParseBlobPath(entry.Path)
		if parseErr != nil {
			slog.WarnContext(ctx, "sweep: skipping unrecognised blob", "path", entry.Path, "error", parseErr)
			continue
		}

		row, lookupErr := s.repo.Lookup(ctx, addr.ID)
		switch {
		case lookupErr == nil && row.WorkspaceID == addr.WorkspaceID:
			continue
		case lookupErr != nil && !errors.Is(lookupErr, ErrNotFound):
			return res, storeErr("sweep: lookup "+addr.ID.String(), lookupErr)
		}

		res.Orphans = append(res.Orphans, entry.Path)
		if dryRun {
			continue
		}

		if err = s.storage.Delete(ctx, entry.Path); err != nil {
			return res, storeErr("sweep: delete "+entry.Path, err)
		}
		res.Deleted++
	}

	return res, nil
}
