// Package staging keeps the set of attachments a user picked for one ticket,
// validated against per-file, per-type and aggregate size limits.
package staging

import (
	"errors"
	"slices"
	"sync"

	"github.com/moyoez/ticketpanel-go/types"
)

var (
	ErrInvalidType       = errors.New("file type not allowed")
	ErrFileTooLarge      = errors.New("file exceeds the per-file size limit")
	ErrTotalSizeExceeded = errors.New("attachments exceed the total size limit")
)

// Staging owns the staged files of one modal or session.
type Staging struct {
	mu          sync.RWMutex
	constraints types.AttachmentConstraints
	allowed     map[string]struct{}
	files       []types.StagedFile
	totalSize   int64
}

// New returns an empty staging set bound to constraints.
func New(constraints types.AttachmentConstraints) *Staging {
	s := &Staging{
		constraints: constraints,
		files:       make([]types.StagedFile, 0),
	}
	if len(constraints.AllowedMimeTypes) > 0 {
		s.allowed = make(map[string]struct{}, len(constraints.AllowedMimeTypes))
		for _, mimeType := range constraints.AllowedMimeTypes {
			s.allowed[mimeType] = struct{}{}
		}
	}
	return s
}

// AddCandidates validates files in order and stages the ones that pass.
// Rejections are reported per candidate; duplicates by (name, size) are skipped.
func (s *Staging) AddCandidates(files []types.FileDescriptor) types.ValidationReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := types.ValidationReport{
		Results: make([]types.CandidateResult, 0, len(files)),
	}
	for i, file := range files {
		result := types.CandidateResult{
			Index: i,
			Name:  file.Name,
			Size:  file.Size,
		}
		if err := s.check(file); err != nil {
			result.Outcome = types.OutcomeRejected
			result.Reason = err
		} else if s.contains(file) {
			result.Outcome = types.OutcomeDuplicate
		} else {
			s.files = append(s.files, types.StagedFile{FileDescriptor: file})
			s.totalSize += file.Size
			result.Outcome = types.OutcomeAccepted
		}
		report.Results = append(report.Results, result)
	}
	return report
}

// check runs type, per-file size and aggregate size checks in that order.
// totalSize already includes files accepted earlier in the same batch.
func (s *Staging) check(file types.FileDescriptor) error {
	if s.allowed != nil {
		if _, ok := s.allowed[file.MimeType]; !ok {
			return ErrInvalidType
		}
	}
	if file.Size > s.constraints.MaxFileSizeBytes {
		return ErrFileTooLarge
	}
	if s.totalSize+file.Size > s.constraints.MaxTotalSizeBytes {
		return ErrTotalSizeExceeded
	}
	return nil
}

func (s *Staging) contains(file types.FileDescriptor) bool {
	return slices.ContainsFunc(s.files, func(f types.StagedFile) bool {
		return f.SameAs(file)
	})
}

// Remove drops the file at index. Out of range indexes are ignored.
func (s *Staging) Remove(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.files) {
		return
	}
	s.totalSize -= s.files[index].Size
	s.files = slices.Delete(s.files, index, index+1)
}

// RemoveStaged drops the files matching sent by (name, size), leaving files
// staged after sent was taken in place. It returns how many were removed.
func (s *Staging) RemoveStaged(sent []types.StagedFile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.files)
	s.files = slices.DeleteFunc(s.files, func(f types.StagedFile) bool {
		return slices.ContainsFunc(sent, func(done types.StagedFile) bool {
			return f.SameAs(done.FileDescriptor)
		})
	})
	s.totalSize = 0
	for _, f := range s.files {
		s.totalSize += f.Size
	}
	return before - len(s.files)
}

// Clear empties the set, after a submission or when the modal closes.
func (s *Staging) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = s.files[:0]
	s.totalSize = 0
}

func (s *Staging) Totals() types.StagingTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.StagingTotals{
		Count:          len(s.files),
		TotalSizeBytes: s.totalSize,
	}
}

// Files returns a copy of the staged files in insertion order.
func (s *Staging) Files() []types.StagedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files)
}

// Snapshot returns the files and their totals under one lock, so both agree.
func (s *Staging) Snapshot() ([]types.StagedFile, types.StagingTotals) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files), types.StagingTotals{
		Count:          len(s.files),
		TotalSizeBytes: s.totalSize,
	}
}

func (s *Staging) Constraints() types.AttachmentConstraints {
	return s.constraints
}
