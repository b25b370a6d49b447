package editsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/domedit/editsvc/internal/journal"
	"github.com/hazyhaar/domedit/locator"
	"github.com/hazyhaar/domedit/safeio"
	"github.com/hazyhaar/domedit/verify"
)

// Apply runs the full pipeline for one edit request and writes the result:
// resolve, read, sanitize, locate, verify, atomic write, journal.
func (s *Service) Apply(ctx context.Context, req EditRequest) (*PatchResult, error) {
	res, abs, patched, before, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := atomicWrite(abs, []byte(patched)); err != nil {
		return nil, fmt.Errorf("editsvc: write %s: %w", req.File, err)
	}

	id := s.newID()
	if err := s.journal.Insert(ctx, journal.Patch{
		ID:         id,
		File:       req.File,
		Kind:       string(req.Change.Kind),
		Source:     res.Source,
		BeforeHash: res.BeforeHash,
		AfterHash:  res.AfterHash,
		BeforeText: before,
	}); err != nil {
		return nil, err
	}
	res.PatchID = id

	s.logger.Info("editsvc: patch applied",
		"patch_id", id,
		"file", req.File,
		"kind", req.Change.Kind,
		"source", res.Source,
	)
	return res, nil
}

// Preview runs the same pipeline as Apply but stops before the write: the
// patched text comes back in the result and nothing is journaled.
func (s *Service) Preview(ctx context.Context, req EditRequest) (*PatchResult, error) {
	res, _, patched, _, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Patched = patched
	return res, nil
}

// compute is the shared front half of Apply and Preview. It returns the
// result skeleton, the resolved absolute path, the patched text, and the
// original text.
func (s *Service) compute(ctx context.Context, req EditRequest) (*PatchResult, string, string, string, error) {
	if req.File == "" {
		return nil, "", "", "", fmt.Errorf("%w: file is required", ErrInvalidInput)
	}

	abs, err := safeio.SafePath(s.cfg.ProjectRoot, req.File)
	if err != nil {
		return nil, "", "", "", fmt.Errorf("%w: %s", ErrInvalidInput, req.File)
	}

	data, err := safeio.ReadFileMax(abs, s.cfg.MaxFileBytes)
	if err != nil {
		return nil, "", "", "", fmt.Errorf("editsvc: read %s: %w", req.File, err)
	}
	before := string(data)

	change, err := sanitizeChange(req.Change)
	if err != nil {
		return nil, "", "", "", err
	}

	patched, ok, err := locator.Apply(before, req.Descriptor, change, req.SourceLine)
	if err != nil {
		return nil, "", "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	source := "fast_path"
	if !ok {
		if s.generator == nil {
			return nil, "", "", "", ErrDeclined
		}
		patched, err = s.generator.Generate(ctx, before, req)
		if err != nil {
			return nil, "", "", "", fmt.Errorf("editsvc: generator: %w", err)
		}
		source = "generator"
	}

	if err := verify.Patched(abs, before, patched); err != nil {
		s.logger.Warn("editsvc: patch failed verification",
			"file", req.File, "kind", req.Change.Kind, "error", err)
		return nil, "", "", "", fmt.Errorf("%w: %v", ErrDeclined, err)
	}

	res := &PatchResult{
		File:       req.File,
		Source:     source,
		BeforeHash: hashText(before),
		AfterHash:  hashText(patched),
	}
	return res, abs, patched, before, nil
}

// Undo restores the journaled pre-patch text of patchID. It refuses when
// the file on disk no longer hashes to the journaled post-patch state:
// edits made since the patch would be silently destroyed otherwise.
func (s *Service) Undo(ctx context.Context, patchID string) (*PatchRecord, error) {
	p, err := s.journal.Get(ctx, patchID)
	if errors.Is(err, journal.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.RevertedAt != "" {
		return nil, ErrAlreadyReverted
	}

	abs, err := safeio.SafePath(s.cfg.ProjectRoot, p.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, p.File)
	}
	data, err := safeio.ReadFileMax(abs, s.cfg.MaxFileBytes)
	if err != nil {
		return nil, fmt.Errorf("editsvc: read %s: %w", p.File, err)
	}
	if hashText(string(data)) != p.AfterHash {
		return nil, ErrFileChanged
	}

	if err := atomicWrite(abs, []byte(p.BeforeText)); err != nil {
		return nil, fmt.Errorf("editsvc: restore %s: %w", p.File, err)
	}
	if err := s.journal.MarkReverted(ctx, patchID); err != nil {
		return nil, err
	}

	s.logger.Info("editsvc: patch reverted", "patch_id", patchID, "file", p.File)
	got, err := s.journal.Get(ctx, patchID)
	if err != nil {
		return nil, err
	}
	rec := recordOf(got)
	return &rec, nil
}

// History lists journaled patches, newest first. An empty file lists
// across the whole project; limit <= 0 uses the configured default.
func (s *Service) History(ctx context.Context, file string, limit int) ([]PatchRecord, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	patches, err := s.journal.List(ctx, file, limit)
	if err != nil {
		return nil, err
	}
	out := make([]PatchRecord, 0, len(patches))
	for i := range patches {
		out = append(out, recordOf(&patches[i]))
	}
	return out, nil
}

func recordOf(p *journal.Patch) PatchRecord {
	return PatchRecord{
		ID:         p.ID,
		File:       p.File,
		Kind:       p.Kind,
		Source:     p.Source,
		BeforeHash: p.BeforeHash,
		AfterHash:  p.AfterHash,
		CreatedAt:  p.CreatedAt,
		RevertedAt: p.RevertedAt,
	}
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// atomicWrite writes data next to path and renames it into place, so a
// crash mid-write never leaves a half-patched source file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
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
