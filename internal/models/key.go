package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SerialNo is an asset's sr_no. Clients send it either as a JSON number or a numeric string.
type SerialNo int64

func (s *SerialNo) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(str))
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("sr_no must be an integer: %s", b)
	}
	*s = SerialNo(n)
	return nil
}

// AssetKey is an asset identity as sent by clients. Tag fields that do not apply to the
// table type are ignored.
type AssetKey struct {
	SrNo            *SerialNo `json:"sr_no"`
	MachineAssetTag string    `json:"machine_asset_tag,omitempty"`
	MonitorAssetTag string    `json:"monitor_asset_tag,omitempty"`
	AssetTag        string    `json:"asset_tag,omitempty"`
}

// KeyFromRow extracts the identity fields from a record.
func KeyFromRow(row Row) AssetKey {
	var k AssetKey
	switch v := row["sr_no"].(type) {
	case int64:
		n := SerialNo(v)
		k.SrNo = &n
	case int:
		n := SerialNo(v)
		k.SrNo = &n
	case float64:
		n := SerialNo(v)
		k.SrNo = &n
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n := SerialNo(i)
			k.SrNo = &n
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			n := SerialNo(i)
			k.SrNo = &n
		}
	}
	k.MachineAssetTag, _ = row["machine_asset_tag"].(string)
	k.MonitorAssetTag, _ = row["monitor_asset_tag"].(string)
	k.AssetTag, _ = row["asset_tag"].(string)
	return k
}

// KeySpec is a resolved identity key. It is either ThreeColumn (systems) or TwoColumn
// (every other table type); nothing else implements it.
type KeySpec interface {
	// Serial returns the sr_no part of the key.
	Serial() int64
	// Where renders "col = $n AND ..." starting at placeholder n, with matching args.
	Where(n int) (string, []any)
	// Tags returns machine, monitor and asset tag, nil where the table type has no such column.
	Tags() (machine, monitor, asset *string)

	keySpec()
}

// ThreeColumn identifies a systems record: a machine and an optional monitor, each tagged.
type ThreeColumn struct {
	SrNo            int64
	MonitorAssetTag string
	MachineAssetTag string
}

func (k ThreeColumn) Serial() int64 { return k.SrNo }

func (k ThreeColumn) Where(n int) (string, []any) {
	return fmt.Sprintf("sr_no = $%d AND monitor_asset_tag = $%d AND machine_asset_tag = $%d", n, n+1, n+2),
		[]any{k.SrNo, k.MonitorAssetTag, k.MachineAssetTag}
}

func (k ThreeColumn) Tags() (machine, monitor, asset *string) {
	return &k.MachineAssetTag, &k.MonitorAssetTag, nil
}

func (ThreeColumn) keySpec() {}

// TwoColumn identifies servers, switches, firewalls and printers.
type TwoColumn struct {
	SrNo     int64
	AssetTag string
}

func (k TwoColumn) Serial() int64 { return k.SrNo }

func (k TwoColumn) Where(n int) (string, []any) {
	return fmt.Sprintf("sr_no = $%d AND asset_tag = $%d", n, n+1), []any{k.SrNo, k.AssetTag}
}

func (k TwoColumn) Tags() (machine, monitor, asset *string) {
	return nil, nil, &k.AssetTag
}

func (TwoColumn) keySpec() {}

// KeyColumns returns the identity columns of a table type.
func KeyColumns(t TableType) []string {
	if t == TableSystems {
		return []string{"sr_no", "monitor_asset_tag", "machine_asset_tag"}
	}
	return []string{"sr_no", "asset_tag"}
}

// IsKeyColumn reports whether name is part of the identity key of t.
func IsKeyColumn(t TableType, name string) bool {
	for _, c := range KeyColumns(t) {
		if c == name {
			return true
		}
	}
	return false
}

// ResolveKey picks the key shape for t and checks every required field is present.
func ResolveKey(t TableType, k AssetKey) (KeySpec, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTableType, string(t))
	}
	if k.SrNo == nil {
		return nil, &FieldError{Field: "sr_no", Err: ErrMissingRequiredKeyField}
	}
	if t == TableSystems {
		if k.MachineAssetTag == "" {
			return nil, &FieldError{Field: "machine_asset_tag", Err: ErrMissingRequiredKeyField}
		}
		if k.MonitorAssetTag == "" {
			return nil, &FieldError{Field: "monitor_asset_tag", Err: ErrMissingRequiredKeyField}
		}
		return ThreeColumn{
			SrNo:            int64(*k.SrNo),
			MonitorAssetTag: k.MonitorAssetTag,
			MachineAssetTag: k.MachineAssetTag,
		}, nil
	}
	if k.AssetTag == "" {
		return nil, &FieldError{Field: "asset_tag", Err: ErrMissingRequiredKeyField}
	}
	return TwoColumn{SrNo: int64(*k.SrNo), AssetTag: k.AssetTag}, nil
}
