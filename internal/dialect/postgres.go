package dialect

import (
	"fmt"
	"strings"

	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// Postgres renders portable PostgreSQL SQL. Layout hints are dropped and
// staging tables are filled by the client-side loader.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) ServerSideCopy() bool { return false }

func (Postgres) ColumnDefinition(col schema.Column) string {
	var b strings.Builder
	b.WriteString(QuoteIdent(col.Name))
	b.WriteByte(' ')
	b.WriteString(postgresType(col.Type))
	if col.Identity {
		b.WriteString(" GENERATED BY DEFAULT AS IDENTITY (START WITH 0 MINVALUE 0)")
	}
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	return b.String()
}

func postgresType(t schema.ColumnType) string {
	switch t {
	case schema.Char:
		return "CHAR(1)"
	case schema.Integer:
		return "INTEGER"
	case schema.Float:
		return "DOUBLE PRECISION"
	case schema.Timestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (Postgres) Copy(target string, _ CopySpec) (string, error) {
	return "", fmt.Errorf("postgres cannot COPY %s from object storage: %w", target, songplays.ErrUnsupportedDialect)
}

func (Postgres) StartTime(expr string) string {
	return "CAST(" + expr + " AS TIMESTAMP)"
}

func (Postgres) Weekday(expr string) string {
	return "EXTRACT(DOW FROM " + expr + ")"
}
