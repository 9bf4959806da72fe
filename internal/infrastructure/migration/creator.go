package migration

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var skeleton = template.Must(template.New("migration").Parse(`-- Migration: {{.File.Name}}{{if .Down}} (Rollback){{end}}
-- Created: {{.File.Timestamp}}
-- Description: {{if .Down}}Rollback for {{end}}{{.File.Description}}

-- Write your {{if .Down}}DOWN{{else}}UP{{end}} migration SQL here

`))

// MigrationFile is a freshly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// MigrationInfo is a migration found on disk. Name is the file's base name
// without the .up.sql suffix.
type MigrationInfo struct {
	Version uint64
	Name    string
	HasDown bool
}

// CreateMigration writes a new up/down pair versioned by the current UTC
// time, or one past the newest existing version if the clock is behind it.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	return createMigrationAt(migrationsDir, name, description, time.Now())
}

func createMigrationAt(dir, name, description string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}
	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	version, _ := strconv.ParseUint(now.Format(versionLayout), 10, 64)
	if len(existing) > 0 {
		version = max(version, existing[len(existing)-1].Version+1)
	}

	base := filepath.Join(dir, strconv.FormatUint(version, 10)+"_"+slug)
	mf := &MigrationFile{
		Version:     strconv.FormatUint(version, 10),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}
	if err := writeSkeleton(mf.UpPath, mf, false); err != nil {
		return nil, err
	}
	if err := writeSkeleton(mf.DownPath, mf, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

// writeSkeleton never overwrites an existing file
func writeSkeleton(path string, mf *MigrationFile, down bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = skeleton.Execute(f, struct {
		File *MigrationFile
		Down bool
	}{mf, down})
	return errors.Join(err, f.Close())
}

// sanitizeName lowercases name, keeps letters and digits, and joins the words
// between spaces, hyphens and underscores with single underscores.
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	kept := words[:0]
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
				return r
			}
			return -1
		}, w)
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "_")
}

// ListMigrations returns the <version>_<name>.up.sql migrations in dir by
// ascending version. Other files are ignored and a missing dir is empty.
func ListMigrations(migrationsDir string) ([]MigrationInfo, error) {
	entries, err := os.ReadDir(migrationsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []MigrationInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var ups []string
	downs := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			ups = append(ups, base)
		} else if base, ok := strings.CutSuffix(entry.Name(), ".down.sql"); ok {
			downs[base] = true
		}
	}

	migrations := make([]MigrationInfo, 0, len(ups))
	for _, base := range ups {
		prefix, _, _ := strings.Cut(base, "_")
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil || prefix == base {
			continue
		}
		migrations = append(migrations, MigrationInfo{Version: version, Name: base, HasDown: downs[base]})
	}
	slices.SortFunc(migrations, func(a, b MigrationInfo) int { return cmp.Compare(a.Version, b.Version) })
	return migrations, nil
}
