package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"asset-organizer/internal/model"
	"asset-organizer/internal/organizer"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q: expected table, json, or yaml", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writePaths(w io.Writer, paths []organizer.LocationPath) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tDIRECTORY")
	for _, p := range paths {
		dir := p.Path
		if dir == "" {
			dir = "(not set)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", p.Location, dir)
	}
	return tw.Flush()
}

// writeRecords prints one row per record followed by a summary line.
func writeRecords(w io.Writer, lib *organizer.PackageLibrary, records []*organizer.PackageRecord, compared bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tTITLE\tVERSION\tUNITY\tPUBLISHER\tCATEGORY\tSIZE\tMODIFIED"
	if compared {
		header += "\tARCHIVED"
	}
	fmt.Fprintln(tw, header)
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s",
			r.ID, r.Title, r.Version, r.UnityVersion, r.Publisher.Label, r.Category.Label,
			r.DisplayFileSize, r.DisplayModifiedDate)
		if compared {
			fmt.Fprintf(tw, "\t%s", yesNo(r.IsArchived))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d packages (%d files, %s) in %s\n",
		len(records), lib.PackageCount(), lib.FileCount(), lib.SizeOnDisk(), lib.Location())
	return err
}

func writeFilterChoices(w io.Writer, c organizer.FilterChoices) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "category\t%s\n", strings.Join(c.Categories, ", "))
	fmt.Fprintf(tw, "publisher\t%s\n", strings.Join(c.Publishers, ", "))
	fmt.Fprintf(tw, "unity\t%s\n", strings.Join(c.UnityVersions, ", "))
	return tw.Flush()
}

func writeStatus(w io.Writer, reports []organizer.ArchiveStatusReport) error {
	for _, rep := range reports {
		fmt.Fprintf(w, "%s\nArchive status: %s\n", rep.Record, rep.StateName)
		if len(rep.Candidates) == 0 {
			fmt.Fprintln(w, "No archived package shares this id.")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CANDIDATE\tTITLE\tVERSION\tUNITY\tVERSION_ID\tPUBDATE")
		for _, c := range rep.Candidates {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.Candidate.FullFilePath,
				yesNo(c.Fields.Title), yesNo(c.Fields.Version), yesNo(c.Fields.UnityVersion),
				yesNo(c.Fields.VersionID), yesNo(c.Fields.PubDate))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeArchiveReport(w io.Writer, report *organizer.ArchiveReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDECISION\tMATCH\tTITLE\tDESTINATION")
	for _, e := range report.Entries {
		dst := e.Destination
		if e.Err != nil {
			dst = e.Err.Error()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Index+1, e.Decision, e.State, e.Record.Title, dst)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var parts []string
	for _, d := range []organizer.Decision{
		organizer.DecisionCopied, organizer.DecisionSimulated, organizer.DecisionExists,
		organizer.DecisionSkipped, organizer.DecisionIgnored, organizer.DecisionFailed,
	} {
		if n := report.Count(d); n > 0 {
			parts = append(parts, strings.ToLower(string(d))+" "+strconv.Itoa(n))
		}
	}
	summary := "nothing to archive"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}
	if report.DryRun {
		summary += " (dry run)"
	}
	_, err := fmt.Fprintf(w, "\n%d packages from %s: %s\n", len(report.Entries), report.Source, summary)
	return err
}

func writeRuns(w io.Writer, runs []*model.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tOPERATION\tSOURCE\tSTARTED\tSTATUS\tDURATION")
	for _, r := range runs {
		duration := ""
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond).String()
		}
		op := r.Operation
		if r.DryRun {
			op += " (dry run)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), op, r.Source, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, duration)
	}
	return tw.Flush()
}

func writeRunEntries(w io.Writer, run *model.Run, entries []*model.RunEntry) error {
	fmt.Fprintf(w, "Run %s  %s from %s  %s  [%s]\n\n", run.ID, run.Operation, run.Source,
		run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Status)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDECISION\tMATCH\tID\tTITLE\tDESTINATION\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.Seq+1, e.Decision, e.MatchState, e.PackageID, e.Title, e.DestinationPath, e.Error)
	}
	return tw.Flush()
}

// shortID trims a UUID to its first group.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) == 36 {
		return id[:i]
	}
	return id
}
