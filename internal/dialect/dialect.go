// Package dialect renders engine-specific SQL fragments for the warehouse
// tables. The statement builder composes these fragments into full statements;
// dialects hold no connection state.
package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// Dialect renders the parts of a statement that differ between engines.
type Dialect interface {
	// Name is the identifier used in configuration ("redshift", "postgres").
	Name() string

	// ColumnDefinition renders one column of a CREATE TABLE, including type,
	// identity, primary key and layout hints the engine understands.
	ColumnDefinition(col schema.Column) string

	// ServerSideCopy reports whether the engine reads object storage itself.
	// When false, staging tables are loaded by the client.
	ServerSideCopy() bool

	// Copy renders a server-side bulk load into target.
	// Engines without server-side COPY return songplays.ErrUnsupportedDialect.
	Copy(target string, spec CopySpec) (string, error)

	// StartTime converts a staged event timestamp expression into the fact
	// table's start_time value.
	StartTime(expr string) string

	// Weekday extracts the day of week (0 = Sunday) from a timestamp expression.
	Weekday(expr string) string
}

// CopySpec describes one server-side bulk load.
type CopySpec struct {
	Source    string // object-storage prefix
	IAMRole   string // role ARN the warehouse assumes
	JSONPaths string // descriptor location or songplays.JSONPathsAuto
	Region    string
	// EpochMillis parses timestamp columns from epoch milliseconds.
	EpochMillis bool
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialect{}
	aliases    = map[string]string{}
)

// Register makes a dialect available to Get under its name and any aliases.
func Register(d Dialect, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
	for _, a := range alias {
		aliases[a] = d.Name()
	}
}

// Get returns the dialect registered under name (case-insensitive).
func Get(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	d, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("dialect %q (available: %s): %w", name, strings.Join(namesLocked(), ", "), songplays.ErrUnsupportedDialect)
	}
	return d, nil
}

// Names returns the registered dialect names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Redshift{}, "aws-redshift")
	Register(Postgres{}, "postgresql", "pg")
}
