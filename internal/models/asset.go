package models

import (
	"fmt"
	"sort"
	"strings"
)

// TableType names one of the fixed asset tables.
type TableType string

const (
	TableSystems  TableType = "systems"
	TableServers  TableType = "servers"
	TableSwitch   TableType = "switch"
	TableFirewall TableType = "firewall"
	TablePrinters TableType = "printers_and_scanners"
)

// TableTypes lists every recognized table type in display order.
var TableTypes = []TableType{TableSystems, TableServers, TableSwitch, TableFirewall, TablePrinters}

// Valid reports whether t is one of the recognized table types.
func (t TableType) Valid() bool {
	for _, known := range TableTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTableType accepts a table type name case-insensitively.
func ParseTableType(s string) (TableType, error) {
	t := TableType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTableType, s)
	}
	return t, nil
}

// Row is one asset record keyed by column name.
type Row map[string]any

// Fields returns the row's column names sorted, so SQL and audit output are deterministic.
func (r Row) Fields() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Creation and change metadata. Stamped by the store, never user-editable.
const (
	ColCreateDate = "create_date"
	ColCreateTime = "create_time"
	ColCreateUser = "create_user"
	ColChangeDate = "change_date"
	ColChangeTime = "change_time"
	ColChangeUser = "change_user"
)

// MetadataColumns are excluded from updates, audit diffs and exports.
var MetadataColumns = []string{
	ColCreateUser, ColCreateTime, ColCreateDate,
	ColChangeUser, ColChangeTime, ColChangeDate,
}

// IsMetadataColumn reports whether name is a create/change metadata column.
func IsMetadataColumn(name string) bool {
	for _, c := range MetadataColumns {
		if c == name {
			return true
		}
	}
	return false
}

// IsDateColumn reports whether a column carries a calendar date (any name containing "date").
func IsDateColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "date")
}
