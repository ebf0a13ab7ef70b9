package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/dbkit/internal/orm"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Pair is a migration discovered on disk: an up-script, its optional
// down-script, and the up-script's content checksum. The id is the shared
// basename with the suffix stripped.
type Pair struct {
	ID         string
	UpPath     string
	DownPath   string // empty when the migration is irreversible
	UpChecksum string
}

// Reversible reports whether the pair has a down-script.
func (p Pair) Reversible() bool { return p.DownPath != "" }

// ScanPairs enumerates dir for <id>.up.sql / <id>.down.sql pairs, computes
// up-script checksums, and returns the pairs sorted ascending by id. With
// timestamp-prefixed ids the sort order equals chronological order.
//
// A down-script without a matching up-script is an orphan and is skipped
// silently; files matching neither suffix are ignored. A missing directory
// is a ConfigurationError.
func ScanPairs(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, orm.NewConfigurationError("migrations.dir",
				fmt.Sprintf("directory does not exist: %s", dir))
		}
		return nil, fmt.Errorf("read migrations directory %s: %w", dir, err)
	}

	type paths struct {
		up, down string
	}
	byID := make(map[string]*paths)
	at := func(id string) *paths {
		p, ok := byID[id]
		if !ok {
			p = &paths{}
			byID[id] = p
		}
		return p
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if id, ok := strings.CutSuffix(name, upSuffix); ok {
			at(id).up = filepath.Join(dir, name)
		} else if id, ok := strings.CutSuffix(name, downSuffix); ok {
			at(id).down = filepath.Join(dir, name)
		}
	}

	pairs := make([]Pair, 0, len(byID))
	for id, p := range byID {
		if p.up == "" {
			continue // orphan down-script
		}
		checksum, err := ChecksumFile(p.up)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{
			ID:         id,
			UpPath:     p.up,
			DownPath:   p.down,
			UpChecksum: checksum,
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	return pairs, nil
}
