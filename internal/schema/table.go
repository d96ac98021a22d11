package schema

import "fmt"

// ColumnType is the engine-independent type of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Char
	Integer
	Float
	Timestamp
)

func (t ColumnType) String() string {
	switch t {
	case Text:
		return "text"
	case Char:
		return "char"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Timestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Kind classifies a table's role in the model.
type Kind int

const (
	Staging Kind = iota
	Dimension
	Fact
)

func (k Kind) String() string {
	switch k {
	case Staging:
		return "staging"
	case Dimension:
		return "dimension"
	case Fact:
		return "fact"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column describes one table column.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
	// Identity marks a warehouse-generated surrogate key, excluded from inserts.
	Identity bool
	DistKey  bool
	SortKey  bool
}

// Table describes one warehouse table.
type Table struct {
	Name    string
	Kind    Kind
	Columns []Column
}

// PrimaryKey returns the primary key column. Staging tables have none.
func (t Table) PrimaryKey() (Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns all column names in declared order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// InsertColumns returns the columns an INSERT supplies values for,
// i.e. every column except identity columns.
func (t Table) InsertColumns() []Column {
	cols := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.Identity {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
