// Package sqlgen builds the statements of the pipeline: drops, creates,
// staging loads and the insert-select transforms that populate the star
// schema. Statement text depends only on the dialect, the target schema and
// the explicit Sources passed to New.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// Builder renders statements for one dialect and target schema.
type Builder struct {
	dialect dialect.Dialect
	schema  string
	sources songplays.Sources
}

// New creates a Builder. Panics if d is nil.
func New(d dialect.Dialect, schemaName string, sources songplays.Sources) *Builder {
	if d == nil {
		panic("dialect cannot be nil")
	}
	return &Builder{dialect: d, schema: schemaName, sources: sources}
}

// Dialect returns the dialect statements are rendered for.
func (b *Builder) Dialect() dialect.Dialect { return b.dialect }

// Schema returns the target schema, empty for the search_path default.
func (b *Builder) Schema() string { return b.schema }

// Sources returns the load inputs the builder was created with.
func (b *Builder) Sources() songplays.Sources { return b.sources }

// Table returns the qualified name of a table.
func (b *Builder) Table(name string) string {
	return dialect.Qualify(b.schema, name)
}

// CreateSchema returns the schema creation statement, or false when no
// schema is configured.
func (b *Builder) CreateSchema() (string, bool) {
	if b.schema == "" {
		return "", false
	}
	return "CREATE SCHEMA IF NOT EXISTS " + dialect.QuoteIdent(b.schema) + ";", true
}

// Drop returns DROP TABLE IF EXISTS for t.
func (b *Builder) Drop(t schema.Table) string {
	return "DROP TABLE IF EXISTS " + b.Table(t.Name) + ";"
}

// Create returns CREATE TABLE IF NOT EXISTS for t.
func (b *Builder) Create(t schema.Table) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (\n", b.Table(t.Name))
	for i, col := range t.Columns {
		sb.WriteString("    ")
		sb.WriteString(b.dialect.ColumnDefinition(col))
		if i < len(t.Columns)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(");")
	return sb.String()
}

// CopySpec returns the load description of a staging table.
func (b *Builder) CopySpec(t schema.Table) (dialect.CopySpec, error) {
	spec := dialect.CopySpec{
		IAMRole: b.sources.IAMRoleARN,
		Region:  b.sources.RegionOrDefault(),
	}
	switch t.Name {
	case schema.StagingEventsName:
		spec.Source = b.sources.LogData
		spec.JSONPaths = b.sources.LogJSONPath
		spec.EpochMillis = true
	case schema.StagingSongsName:
		spec.Source = b.sources.SongData
		spec.JSONPaths = songplays.JSONPathsAuto
	default:
		return dialect.CopySpec{}, fmt.Errorf("%s is not a staging table: %w", t.Name, songplays.ErrInvalidConfig)
	}
	return spec, nil
}

// Copy returns the server-side bulk load of a staging table.
// Dialects without server-side COPY return songplays.ErrUnsupportedDialect.
func (b *Builder) Copy(t schema.Table) (string, error) {
	spec, err := b.CopySpec(t)
	if err != nil {
		return "", err
	}
	return b.dialect.Copy(b.Table(t.Name), spec)
}

// Insert returns the insert-select that populates a fact or dimension table.
func (b *Builder) Insert(t schema.Table) (string, error) {
	tr, ok := transforms[t.Name]
	if !ok {
		return "", fmt.Errorf("no transform populates %s: %w", t.Name, songplays.ErrInvalidConfig)
	}
	return tr.render(b, t), nil
}

// SourcesOf returns the staging tables a fact or dimension table is
// populated from.
func SourcesOf(table string) []string {
	tr, ok := transforms[table]
	if !ok {
		return nil
	}
	return append([]string(nil), tr.from...)
}
