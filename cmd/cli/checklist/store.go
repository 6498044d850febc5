// Package checklist keeps laptop issuance records (the issuing form plus the hand-over
// checklist) on the operator's machine and pushes the issuance details to the asset.
package checklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// StatusCount is the number of items on the hand-over checklist.
const StatusCount = 32

// StatusNA is the default value of an unchecked item.
const StatusNA = "N/A"

var (
	ErrNotFound          = errors.New("checklist record not found")
	ErrSystemNameMissing = errors.New("system name is mandatory")
)

// Issuing is the issuing form.
type Issuing struct {
	Username      string `json:"username"`
	Department    string `json:"deptName"`
	DateOfIssue   string `json:"dateOfIssue"`
	Laptop        string `json:"laptop"`
	SerialNo      string `json:"serialNo"`
	Configuration string `json:"configuration"`
	Accessories   string `json:"accessories"`
	AssetTag      string `json:"assetTag"`
	IssuedBy      string `json:"issuedPerson"`
}

// Checklist is the hand-over checklist. Statuses are keyed status1..status32.
type Checklist struct {
	SystemName string            `json:"systemName"`
	Statuses   map[string]string `json:"statuses"`
}

// AssetLink identifies the systems asset a record was issued from. Zero means unlinked.
type AssetLink struct {
	SrNo            int64  `json:"sr_no,omitempty"`
	MachineAssetTag string `json:"machine_asset_tag,omitempty"`
	MonitorAssetTag string `json:"monitor_asset_tag,omitempty"`
}

func (l AssetLink) Linked() bool {
	return l.SrNo > 0 && l.MachineAssetTag != "" && l.MonitorAssetTag != ""
}

type Record struct {
	SrNo int `json:"srNo"`
	Issuing
	Asset     AssetLink `json:"asset"`
	Checklist Checklist `json:"checklist"`
}

// StatusKey returns the statuses map key of item i (1-based).
func StatusKey(i int) string {
	return fmt.Sprintf("status%d", i)
}

// DefaultStatuses returns every item set to N/A.
func DefaultStatuses() map[string]string {
	m := make(map[string]string, StatusCount)
	for i := 1; i <= StatusCount; i++ {
		m[StatusKey(i)] = StatusNA
	}
	return m
}

// normalize fills missing or blank statuses with N/A and trims the system name.
func (r *Record) normalize() {
	r.Checklist.SystemName = strings.TrimSpace(r.Checklist.SystemName)
	statuses := DefaultStatuses()
	for k, v := range r.Checklist.Statuses {
		if v = strings.TrimSpace(v); v != "" {
			statuses[k] = v
		}
	}
	r.Checklist.Statuses = statuses
}

// Updates is what push sends to the linked asset. An empty date of issue clears the column.
func (r Record) Updates() map[string]any {
	var dateOfIssue any
	if r.DateOfIssue != "" {
		dateOfIssue = r.DateOfIssue
	}
	return map[string]any{
		"user_name":     r.Username,
		"department":    r.Department,
		"date_of_issue": dateOfIssue,
		"accessories":   r.Accessories,
	}
}

// ==========================
// Store
// ==========================

// Store holds the records of one file. Nothing touches disk until Persist.
type Store struct {
	path    string
	records map[int]Record
}

// Load reads the store at path. A missing file is an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, records: map[int]Record{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var list []Record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for _, r := range list {
		r.normalize()
		s.records[r.SrNo] = r
	}
	return s, nil
}

// Persist writes every record to the store's file, replacing it atomically.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.List(), "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// NextSrNo is one past the highest record number.
func (s *Store) NextSrNo() int {
	max := 0
	for n := range s.records {
		if n > max {
			max = n
		}
	}
	return max + 1
}

// Save inserts r, or replaces the record with the same SrNo. A zero SrNo gets NextSrNo.
// It reports whether the stored record changed.
func (s *Store) Save(r Record) (Record, bool, error) {
	r.normalize()
	if r.Checklist.SystemName == "" {
		return Record{}, false, ErrSystemNameMissing
	}
	if r.SrNo == 0 {
		r.SrNo = s.NextSrNo()
	}
	old, exists := s.records[r.SrNo]
	s.records[r.SrNo] = r
	return r, !exists || !reflect.DeepEqual(old, r), nil
}

func (s *Store) Get(srNo int) (Record, error) {
	r, ok := s.records[srNo]
	if !ok {
		return Record{}, fmt.Errorf("%w: %d", ErrNotFound, srNo)
	}
	return r, nil
}

func (s *Store) Delete(srNo int) error {
	if _, ok := s.records[srNo]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, srNo)
	}
	delete(s.records, srNo)
	return nil
}

// List returns the records ordered by SrNo.
func (s *Store) List() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SrNo < out[j].SrNo })
	return out
}
