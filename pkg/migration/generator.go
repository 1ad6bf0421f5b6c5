package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marshallshelly/agroexport/pkg/schema"
)

// Generator generates migration files.
type Generator struct {
	migrationsDir string
}

// NewGenerator creates a new migration file generator.
func NewGenerator(migrationsDir string) *Generator {
	return &Generator{
		migrationsDir: migrationsDir,
	}
}

// Generate creates migration files that build the given tables.
func (g *Generator) Generate(name string, tables []*schema.TableMetadata) (*MigrationFile, error) {
	// Ensure migrations directory exists
	if err := os.MkdirAll(g.migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := GenerateVersion()

	upSQL, downSQL, err := NewPlanner().CreateSchema(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to plan schema: %w", err)
	}
	header := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n", name, version)
	upSQL = header + upSQL
	downSQL = header + downSQL

	// Create migration file
	migrationFile := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(g.migrationsDir, GenerateFileName(version, name, "up")),
		DownPath: filepath.Join(g.migrationsDir, GenerateFileName(version, name, "down")),
	}

	// Write up migration
	if err := g.writeFile(migrationFile.UpPath, upSQL); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}

	// Write down migration
	if err := g.writeFile(migrationFile.DownPath, downSQL); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return migrationFile, nil
}

// GenerateEmpty creates empty migration files for manual editing.
func (g *Generator) GenerateEmpty(name string) (*MigrationFile, error) {
	if err := os.MkdirAll(g.migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := GenerateVersion()

	migrationFile := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(g.migrationsDir, GenerateFileName(version, name, "up")),
		DownPath: filepath.Join(g.migrationsDir, GenerateFileName(version, name, "down")),
	}

	// Write empty files with comments
	upSQL := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n-- Write your UP migration here\n", name, version)
	downSQL := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n-- Write your DOWN migration here\n", name, version)

	if err := g.writeFile(migrationFile.UpPath, upSQL); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}

	if err := g.writeFile(migrationFile.DownPath, downSQL); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return migrationFile, nil
}

// ListMigrations lists all migration files in the migrations directory.
func (g *Generator) ListMigrations() ([]MigrationFile, error) {
	entries, err := os.ReadDir(g.migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []MigrationFile{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return groupMigrationFiles(names, func(name string) string {
		return filepath.Join(g.migrationsDir, name)
	}), nil
}

// groupMigrationFiles pairs {version}_{name}.{up|down}.sql files by version.
// Versions missing either half are dropped; the result is sorted by version.
func groupMigrationFiles(names []string, join func(string) string) []MigrationFile {
	fileMap := make(map[string]*MigrationFile)

	for _, fileName := range names {
		version, rest, ok := strings.Cut(fileName, "_")
		if !ok {
			continue
		}

		if name, ok := strings.CutSuffix(rest, ".up.sql"); ok {
			if _, exists := fileMap[version]; !exists {
				fileMap[version] = &MigrationFile{Version: version, Name: name}
			}
			fileMap[version].UpPath = join(fileName)
		} else if name, ok := strings.CutSuffix(rest, ".down.sql"); ok {
			if _, exists := fileMap[version]; !exists {
				fileMap[version] = &MigrationFile{Version: version, Name: name}
			}
			fileMap[version].DownPath = join(fileName)
		}
	}

	migrations := make([]MigrationFile, 0, len(fileMap))
	for _, mf := range fileMap {
		if mf.UpPath != "" && mf.DownPath != "" {
			migrations = append(migrations, *mf)
		}
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// Load reads every paired migration in dir of fsys, ordered by version.
// It serves migrations embedded into the binary.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	files := groupMigrationFiles(names, func(name string) string {
		return path.Join(dir, name)
	})
	migrations := make([]Migration, 0, len(files))
	for _, f := range files {
		up, err := fs.ReadFile(fsys, f.UpPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.UpPath, err)
		}
		down, err := fs.ReadFile(fsys, f.DownPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.DownPath, err)
		}
		migrations = append(migrations, Migration{
			Version: f.Version,
			Name:    f.Name,
			UpSQL:   string(up),
			DownSQL: string(down),
		})
	}
	return migrations, nil
}

// LoadAll reads every migration listed by ListMigrations.
func (g *Generator) LoadAll() ([]Migration, error) {
	files, err := g.ListMigrations()
	if err != nil {
		return nil, err
	}
	migrations := make([]Migration, 0, len(files))
	for _, f := range files {
		m, err := g.ReadMigration(f)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, *m)
	}
	return migrations, nil
}

// ReadMigration reads the SQL content from a migration file.
func (g *Generator) ReadMigration(file MigrationFile) (*Migration, error) {
	upSQL, err := g.readFile(file.UpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read up migration: %w", err)
	}

	downSQL, err := g.readFile(file.DownPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read down migration: %w", err)
	}

	return &Migration{
		Version: file.Version,
		Name:    file.Name,
		UpSQL:   upSQL,
		DownSQL: downSQL,
	}, nil
}

// writeFile writes content to a file.
func (g *Generator) writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// readFile reads content from a file.
func (g *Generator) readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
