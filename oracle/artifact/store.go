package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"cosmossdk.io/log"
)

// filePrefix carries the format version in the file name so that artifacts of
// another layout are never picked up by name.
const filePrefix = "001-"

// Store keeps artifacts as one file per period in a directory.
type Store struct {
	dir    string
	logger log.Logger
}

// NewStore creates the directory if needed.
func NewStore(dir string, logger log.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory not specified")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory holding the artifacts.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file that holds the artifact of period.
func (s *Store) Path(period uint64) string {
	return filepath.Join(s.dir, filePrefix+strconv.FormatUint(period, 10))
}

// Exists reports whether an artifact for period was written.
func (s *Store) Exists(period uint64) (bool, error) {
	_, err := os.Stat(s.Path(period))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Write stores the artifact unless one already exists for its period, in
// which case it returns false and leaves the file untouched. The content is
// written to a temporary file and linked into place, so readers never see a
// partial artifact.
func (s *Store) Write(a Artifact) (bool, error) {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(Encode(a.Distances)); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to close artifact: %w", err)
	}

	// Link fails if the target exists, which gives create-new semantics.
	if err := os.Link(tmp.Name(), s.Path(a.Period)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.logger.Debug("artifact already exists", "period", a.Period)
			return false, nil
		}
		return false, fmt.Errorf("failed to publish artifact: %w", err)
	}

	s.logger.Info("artifact written", "period", a.Period, "distances", len(a.Distances))
	return true, nil
}

// Read loads the artifact of period. A file in another format yields
// ErrUnrecognizedVersion.
func (s *Store) Read(period uint64) (Artifact, error) {
	bz, err := os.ReadFile(s.Path(period))
	if errors.Is(err, fs.ErrNotExist) {
		return Artifact{}, fmt.Errorf("%w: period %d", ErrNotFound, period)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact: %w", err)
	}
	distances, err := Decode(bz)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Period: period, Distances: distances}, nil
}

// Periods lists the periods with an artifact, in ascending order. Files that
// do not follow the naming scheme are skipped.
func (s *Store) Periods() ([]uint64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact directory: %w", err)
	}
	var periods []uint64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		period, err := strconv.ParseUint(strings.TrimPrefix(entry.Name(), filePrefix), 10, 64)
		if err != nil {
			continue
		}
		periods = append(periods, period)
	}
	slices.Sort(periods)
	return periods, nil
}

// Prune deletes every artifact except those of the keep periods and the
// newest one. It returns the removed periods.
func (s *Store) Prune(keep ...uint64) ([]uint64, error) {
	periods, err := s.Periods()
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	newest := periods[len(periods)-1]

	var removed []uint64
	for _, period := range periods {
		if period == newest || slices.Contains(keep, period) {
			continue
		}
		if err := os.Remove(s.Path(period)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("failed to prune artifact", "period", period, "error", err)
			continue
		}
		removed = append(removed, period)
	}
	if len(removed) > 0 {
		s.logger.Info("pruned artifacts", "removed", len(removed), "kept_newest", newest)
	}
	return removed, nil
}
