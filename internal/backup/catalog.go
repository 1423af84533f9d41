package backup

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// ArchiveInfo describes one archive in the backup directory.
type ArchiveInfo struct {
	Name      string
	Path      string
	CreatedAt time.Time
	SizeBytes int64
}

// List returns the archives in the backup directory whose names follow
// DefaultArchiveName, sorted newest first.
func (m *Manager) List() ([]ArchiveInfo, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, ioFailure(err, "reading backup directory")
	}

	archives := make([]ArchiveInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		createdAt, ok := parseArchiveName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		archives = append(archives, ArchiveInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(m.rootDir, entry.Name()),
			CreatedAt: createdAt,
			SizeBytes: info.Size(),
		})
	}

	if len(archives) == 0 {
		return nil, ErrNoBackupsFound
	}

	// Sort by date, newest first
	slices.SortFunc(archives, func(a, b ArchiveInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return archives, nil
}

// Prune removes archives beyond the newest keep and returns the removed paths.
// A negative keep uses the configured retention count.
func (m *Manager) Prune(keep int) ([]string, error) {
	if keep < 0 {
		keep = m.retentionCount
	}

	archives, err := m.List()
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil, nil // Nothing to prune
		}
		return nil, err
	}

	var removed []string
	for i := keep; i < len(archives); i++ {
		if err := os.Remove(archives[i].Path); err != nil {
			return removed, ioFailure(err, "removing archive "+archives[i].Name)
		}
		m.logger.Info("pruned archive", "path", archives[i].Path)
		removed = append(removed, archives[i].Path)
	}

	return removed, nil
}
