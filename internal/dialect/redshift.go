package dialect

import (
	"fmt"
	"strings"

	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// Redshift renders Amazon Redshift SQL: VARCHAR columns, IDENTITY surrogate
// keys, DISTKEY/SORTKEY column attributes and COPY from S3.
type Redshift struct{}

func (Redshift) Name() string { return "redshift" }

func (Redshift) ServerSideCopy() bool { return true }

func (Redshift) ColumnDefinition(col schema.Column) string {
	var b strings.Builder
	b.WriteString(QuoteIdent(col.Name))
	b.WriteByte(' ')
	b.WriteString(redshiftType(col.Type))
	if col.Identity {
		b.WriteString(" IDENTITY(0,1)")
	}
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if col.SortKey {
		b.WriteString(" SORTKEY")
	}
	if col.DistKey {
		b.WriteString(" DISTKEY")
	}
	return b.String()
}

func redshiftType(t schema.ColumnType) string {
	switch t {
	case schema.Char:
		return "CHAR"
	case schema.Integer:
		return "INTEGER"
	case schema.Float:
		return "FLOAT"
	case schema.Timestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

func (Redshift) Copy(target string, spec CopySpec) (string, error) {
	if spec.Source == "" || spec.IAMRole == "" {
		return "", fmt.Errorf("copy into %s needs a source and an IAM role: %w", target, songplays.ErrInvalidConfig)
	}
	region := spec.Region
	if region == "" {
		region = songplays.DefaultRegion
	}
	format := spec.JSONPaths
	if format == "" {
		format = songplays.JSONPathsAuto
	}

	var b strings.Builder
	fmt.Fprintf(&b, "COPY %s\n", target)
	fmt.Fprintf(&b, "FROM %s\n", QuoteLiteral(spec.Source))
	fmt.Fprintf(&b, "IAM_ROLE %s\n", QuoteLiteral(spec.IAMRole))
	fmt.Fprintf(&b, "FORMAT AS JSON %s\n", QuoteLiteral(format))
	fmt.Fprintf(&b, "REGION %s", QuoteLiteral(region))
	if spec.EpochMillis {
		b.WriteString("\nTIMEFORMAT AS 'epochmillisecs'")
	}
	b.WriteString(";")
	return b.String(), nil
}

func (Redshift) StartTime(expr string) string {
	return "CAST(" + expr + " AS TIMESTAMP)"
}

func (Redshift) Weekday(expr string) string {
	return "EXTRACT(WEEKDAY FROM " + expr + ")"
}
