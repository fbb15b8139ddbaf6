package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const fileTemplate = `-- {{.Name}} ({{.Direction}})
-- Created: {{.Created}}
{{if .Description}}-- {{.Description}}
{{end}}
`

var migrationTmpl = template.Must(template.New("migration").Parse(fileTemplate))

// File is a migration pair written by Create
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Create writes the next sequential up/down pair into dir. Versions are
// six-digit sequence numbers, one past the highest already present.
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	f := &File{
		Version:  next,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}
	data := map[string]string{
		"Name":        slug,
		"Created":     now.UTC().Format(time.RFC3339),
		"Description": description,
	}
	if err := writeTemplate(f.UpPath, data, "up"); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, data, "down"); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path string, data map[string]string, direction string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	data["Direction"] = direction
	if err := migrationTmpl.Execute(out, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}

func slugify(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Entry is one migration found in a source
type Entry struct {
	Version uint
	Name    string
}

// List returns the migrations in source ordered by version. Only up files
// are considered.
func List(source fs.FS) ([]Entry, error) {
	files, err := fs.Glob(source, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		base := strings.TrimSuffix(f, ".up.sql")
		num, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Version: uint(v), Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}
