// Package schema holds the static table metadata that drives generic persistence.
package schema

import (
	"errors"
	"fmt"
)

// ColumnType is the semantic type of a column.
type ColumnType int

const (
	Integer ColumnType = iota + 1
	Real
	Text
	Timestamp
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Text:
		return "TEXT"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column is a single named, typed column.
type Column struct {
	Name string
	Type ColumnType
}

// Descriptor describes one entity table. Columns are listed in table order
// and must be kept in step with the migration that creates the table.
type Descriptor struct {
	Table      string
	Columns    []Column
	PrimaryKey string
}

// Validate checks the descriptor for internal consistency.
func (d Descriptor) Validate() error {
	if d.Table == "" {
		return errors.New("descriptor has no table name")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("descriptor for %s has no columns", d.Table)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name == "" {
			return fmt.Errorf("descriptor for %s has an unnamed column", d.Table)
		}
		if seen[c.Name] {
			return fmt.Errorf("descriptor for %s declares column %q twice", d.Table, c.Name)
		}
		if c.Type < Integer || c.Type > Timestamp {
			return fmt.Errorf("descriptor for %s: column %q has unknown type %v", d.Table, c.Name, c.Type)
		}
		seen[c.Name] = true
	}
	if !seen[d.PrimaryKey] {
		return fmt.Errorf("descriptor for %s: primary key %q is not a declared column", d.Table, d.PrimaryKey)
	}
	return nil
}

// MustValidate panics if the descriptor is inconsistent. Descriptors are
// package-level values, so a broken one is a programming error.
func (d Descriptor) MustValidate() Descriptor {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	return d
}

// Names returns all column names in declared order.
func (d Descriptor) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// NonKey returns the columns other than the primary key, in declared order.
func (d Descriptor) NonKey() []Column {
	cols := make([]Column, 0, len(d.Columns)-1)
	for _, c := range d.Columns {
		if c.Name != d.PrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// KeyIndex returns the position of the primary key column.
func (d Descriptor) KeyIndex() int {
	for i, c := range d.Columns {
		if c.Name == d.PrimaryKey {
			return i
		}
	}
	return -1
}

// Has reports whether the descriptor declares a column with the given name.
func (d Descriptor) Has(name string) bool {
	for _, c := range d.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
