// Package loader bulk-loads staging tables on the client for warehouses that
// cannot read object storage themselves. It mirrors a server-side JSON COPY:
// every object under the source prefix is decoded as a stream of JSON
// records, fields are mapped to columns by a JSONPaths descriptor or by name,
// and rows are sent with COPY FROM STDIN. Any bad record fails the whole load.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// Loader performs client-side staging loads.
type Loader struct {
	store  ObjectStore
	logger songplays.Logger
}

// New creates a Loader. Panics if any dependency is nil.
func New(store ObjectStore, logger songplays.Logger) *Loader {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{store: store, logger: logger}
}

// Load copies every record under spec.Source into table and returns the
// number of rows loaded. Errors wrap songplays.ErrLoadFailed.
func (l *Loader) Load(ctx context.Context, conn songplays.DBConnection, schemaName string, table schema.Table, spec dialect.CopySpec) (int64, error) {
	start := time.Now()

	mapper, err := l.mapper(ctx, table, spec.JSONPaths)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", table.Name, songplays.ErrLoadFailed, err)
	}

	objects, err := l.store.List(ctx, spec.Source)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", table.Name, songplays.ErrLoadFailed, err)
	}
	if len(objects) == 0 {
		return 0, fmt.Errorf("%s: %w: no objects found under %s", table.Name, songplays.ErrLoadFailed, spec.Source)
	}
	l.logger.Verbose("Loading %s from %d object(s) under %s", table.Name, len(objects), spec.Source)

	src := &recordSource{
		ctx:         ctx,
		store:       l.store,
		objects:     objects,
		columns:     table.Columns,
		mapper:      mapper,
		epochMillis: spec.EpochMillis,
	}
	defer src.close()

	ident := pgx.Identifier{table.Name}
	if schemaName != "" {
		ident = pgx.Identifier{schemaName, table.Name}
	}

	n, err := conn.CopyFrom(ctx, ident, table.ColumnNames(), src)
	if err != nil {
		if srcErr := src.Err(); srcErr != nil {
			err = srcErr
		}
		return n, fmt.Errorf("%s: %w: %w", table.Name, songplays.ErrLoadFailed, err)
	}

	l.logger.Verbose("Loaded %d row(s) into %s in %v", n, table.Name, time.Since(start).Round(time.Millisecond))
	return n, nil
}

// mapper extracts one value per column from a record.
type mapper func(record map[string]any) []any

func (l *Loader) mapper(ctx context.Context, table schema.Table, jsonPaths string) (mapper, error) {
	if jsonPaths == "" || strings.EqualFold(jsonPaths, songplays.JSONPathsAuto) {
		return autoMapper(table.Columns), nil
	}

	r, err := l.store.Open(ctx, jsonPaths)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	paths, err := ReadJSONPaths(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", jsonPaths, err)
	}
	if len(paths) != len(table.Columns) {
		return nil, fmt.Errorf("%s lists %d paths but %s has %d columns", jsonPaths, len(paths), table.Name, len(table.Columns))
	}
	return func(record map[string]any) []any {
		vals := make([]any, len(paths))
		for i, p := range paths {
			vals[i] = p.Lookup(record)
		}
		return vals
	}, nil
}

// autoMapper matches top-level keys to column names, exactly first and then
// ignoring case.
func autoMapper(cols []schema.Column) mapper {
	return func(record map[string]any) []any {
		var folded map[string]any
		vals := make([]any, len(cols))
		for i, c := range cols {
			if v, ok := record[c.Name]; ok {
				vals[i] = v
				continue
			}
			if folded == nil {
				folded = make(map[string]any, len(record))
				for k, v := range record {
					folded[strings.ToLower(k)] = v
				}
			}
			vals[i] = folded[c.Name]
		}
		return vals
	}
}

// recordSource streams converted rows from a list of objects and implements
// pgx.CopyFromSource.
type recordSource struct {
	ctx         context.Context
	store       ObjectStore
	objects     []string
	columns     []schema.Column
	mapper      mapper
	epochMillis bool

	next    int // index of the next object to open
	current io.ReadCloser
	dec     *json.Decoder
	object  string
	record  int
	row     []any
	err     error
}

var _ pgx.CopyFromSource = (*recordSource)(nil)

func (s *recordSource) Next() bool {
	for s.err == nil {
		if s.dec == nil {
			if s.next >= len(s.objects) {
				return false
			}
			if err := s.open(s.objects[s.next]); err != nil {
				s.err = err
				return false
			}
			s.next++
		}

		var record map[string]any
		err := s.dec.Decode(&record)
		if errors.Is(err, io.EOF) {
			s.closeCurrent()
			continue
		}
		s.record++
		if err != nil {
			s.err = fmt.Errorf("%s record %d: %w", s.object, s.record, err)
			return false
		}

		row, err := s.convert(record)
		if err != nil {
			s.err = fmt.Errorf("%s record %d: %w", s.object, s.record, err)
			return false
		}
		s.row = row
		return true
	}
	return false
}

func (s *recordSource) Values() ([]any, error) {
	return s.row, nil
}

func (s *recordSource) Err() error {
	return s.err
}

func (s *recordSource) open(uri string) error {
	r, err := s.store.Open(s.ctx, uri)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	s.current = r
	s.dec = dec
	s.object = uri
	s.record = 0
	return nil
}

func (s *recordSource) convert(record map[string]any) ([]any, error) {
	raw := s.mapper(record)
	row := make([]any, len(s.columns))
	for i, col := range s.columns {
		v, err := convert(raw[i], col.Type, s.epochMillis)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

func (s *recordSource) closeCurrent() {
	if s.current != nil {
		_ = s.current.Close()
	}
	s.current = nil
	s.dec = nil
}

func (s *recordSource) close() {
	s.closeCurrent()
}
