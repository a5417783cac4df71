//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report collects data-quality counters per entity and renders the
// plain-text data quality report.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
)

// Entity section names.
const (
	Customers = "customers"
	Products  = "products"
	Sales     = "sales"
	Warehouse = "warehouse"
)

// Counter keys shared by the cleaning and loading stages.
const (
	RawRecords        = "raw_records"
	DuplicatesRemoved = "duplicates_removed"
	CleanedRecords    = "cleaned_records"
	Loaded            = "loaded"
)

// Counter is one named count.
type Counter struct {
	Key   string
	Value int64
}

// Section holds the counters of one entity in insertion order.
type Section struct {
	Name     string
	counters []Counter
	index    map[string]int
}

// Set stores value under key, keeping the key's first position.
func (s *Section) Set(key string, value int64) {
	if i, ok := s.index[key]; ok {
		s.counters[i].Value = value
		return
	}
	s.index[key] = len(s.counters)
	s.counters = append(s.counters, Counter{Key: key, Value: value})
}

// SetInt is Set for int counts.
func (s *Section) SetInt(key string, value int) {
	s.Set(key, int64(value))
}

// Get returns the value of key, or zero.
func (s *Section) Get(key string) int64 {
	if i, ok := s.index[key]; ok {
		return s.counters[i].Value
	}
	return 0
}

// Counters returns a copy of the counters in order.
func (s *Section) Counters() []Counter {
	out := make([]Counter, len(s.counters))
	copy(out, s.counters)
	return out
}

// Report is an ordered set of sections.
type Report struct {
	sections []*Section
}

// New creates a report with the customer, product and sales sections
// already in place so they always print in that order.
func New() *Report {
	r := &Report{}
	r.Section(Customers)
	r.Section(Products)
	r.Section(Sales)
	return r
}

// Section returns the named section, creating it at the end if absent.
func (r *Report) Section(name string) *Section {
	for _, s := range r.sections {
		if s.Name == name {
			return s
		}
	}
	s := &Section{Name: name, index: make(map[string]int)}
	r.sections = append(r.sections, s)
	return s
}

// Sections returns the sections in order.
func (r *Report) Sections() []*Section {
	return r.sections
}

// WriteText renders the report in the plain-text layout.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "DATA QUALITY REPORT")
	fmt.Fprintln(bw, "===================")
	fmt.Fprintln(bw)
	for _, s := range r.sections {
		if len(s.counters) == 0 {
			continue
		}
		fmt.Fprintf(bw, "%s:\n", strings.ToUpper(s.Name))
		for _, c := range s.counters {
			fmt.Fprintf(bw, "  %s: %d\n", c.Key, c.Value)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// String renders the report as text.
func (r *Report) String() string {
	var sb strings.Builder
	_ = r.WriteText(&sb)
	return sb.String()
}

// WriteFile writes the text report to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "failed to create report directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create report %s", path)
	}
	if err := r.WriteText(f); err != nil {
		f.Close()
		return eris.Wrapf(err, "failed to write report %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "failed to close report %s", path)
	}

	logging.Info().Str("path", path).Msg("Wrote data quality report")
	return nil
}

// Log emits one structured log line per section.
func (r *Report) Log() {
	for _, s := range r.sections {
		if len(s.counters) == 0 {
			continue
		}
		ev := logging.Info().Str("entity", s.Name)
		for _, c := range s.counters {
			ev = ev.Int64(c.Key, c.Value)
		}
		ev.Msg("Data quality summary")
	}
}
