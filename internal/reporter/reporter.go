// Package reporter renders the outcome of a dedup run to an io.Writer in
// one of several formats. Formatting lives entirely outside the pipeline's
// contract.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dedupkit/deduper/internal/dedup"
	"github.com/dedupkit/deduper/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatSummary OutputFormat = "summary"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
)

// ValidFormat reports whether f names a supported output format
func ValidFormat(f OutputFormat) bool {
	switch f {
	case FormatSummary, FormatTable, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report renders the run report in the reporter's format
func (r *Reporter) Report(report *dedup.Report) error {
	switch r.format {
	case FormatSummary:
		return r.reportSummary(report)
	case FormatTable:
		return r.reportTable(report)
	case FormatJSON:
		return r.reportJSON(report)
	case FormatYAML:
		return r.reportYAML(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) reportSummary(report *dedup.Report) error {
	fmt.Fprintf(r.writer, "=== Dedup Summary ===\n")
	fmt.Fprintf(r.writer, "Duplicate files: %d\n", report.DuplicateFileCount)
	fmt.Fprintf(r.writer, "Duplicate bytes: %s\n", utils.FormatBytes(report.DuplicateByteCount))
	fmt.Fprintf(r.writer, "Files removed:   %d\n", report.FilesRemoved)
	fmt.Fprintf(r.writer, "Bytes freed:     %s\n", utils.FormatBytes(report.BytesFreed))

	if len(report.RemovalFailures) > 0 {
		fmt.Fprintf(r.writer, "\nRemoval failures: %d\n", len(report.RemovalFailures))
		for _, failure := range report.RemovalFailures {
			fmt.Fprintf(r.writer, "  %s: %s\n", failure.Path, failure.Reason)
		}
	}

	return nil
}

func (r *Reporter) reportTable(report *dedup.Report) error {
	for _, group := range sortedGroups(report.Groups) {
		fmt.Fprintf(r.writer, "%s (%s each)\n", group.Signature, utils.FormatBytes(group.Size))
		for _, path := range group.Paths {
			fmt.Fprintf(r.writer, "  %s\n", path)
		}
	}

	fmt.Fprintf(r.writer, "\nTotal: %d duplicate files, %s\n",
		report.DuplicateFileCount, utils.FormatBytes(report.DuplicateByteCount))
	return nil
}

func (r *Reporter) reportJSON(report *dedup.Report) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view(report))
}

func (r *Reporter) reportYAML(report *dedup.Report) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(view(report))
}

// reportView is the serializable shape of a report
type reportView struct {
	DuplicateFileCount int           `json:"duplicate_file_count" yaml:"duplicate_file_count"`
	DuplicateByteCount int64         `json:"duplicate_byte_count" yaml:"duplicate_byte_count"`
	FilesRemoved       int           `json:"files_removed" yaml:"files_removed"`
	BytesFreed         int64         `json:"bytes_freed" yaml:"bytes_freed"`
	RemovalFailures    []failureView `json:"removal_failures,omitempty" yaml:"removal_failures,omitempty"`
	Groups             []groupView   `json:"groups" yaml:"groups"`
}

type failureView struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

type groupView struct {
	Signature string   `json:"signature" yaml:"signature"`
	Size      int64    `json:"size" yaml:"size"`
	Paths     []string `json:"paths" yaml:"paths"`
}

func view(report *dedup.Report) reportView {
	v := reportView{
		DuplicateFileCount: report.DuplicateFileCount,
		DuplicateByteCount: report.DuplicateByteCount,
		FilesRemoved:       report.FilesRemoved,
		BytesFreed:         report.BytesFreed,
		Groups:             sortedGroups(report.Groups),
	}
	for _, failure := range report.RemovalFailures {
		v.RemovalFailures = append(v.RemovalFailures, failureView{
			Path:   failure.Path,
			Reason: failure.Reason.String(),
		})
	}
	return v
}

// sortedGroups flattens the group map into a slice with a stable order so
// repeated runs render identically.
func sortedGroups(groups dedup.SignatureGroups) []groupView {
	views := make([]groupView, 0, len(groups))
	for sig, paths := range groups {
		views = append(views, groupView{
			Signature: sig.String(),
			Size:      sig.Size,
			Paths:     paths,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Signature < views[j].Signature
	})
	return views
}
