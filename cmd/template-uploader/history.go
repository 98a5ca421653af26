// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/template-uploader/internal/journal"
	"github.com/pdiddy/template-uploader/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List earlier upload runs recorded in the journal",
	Long: `History reads the SQLite journal written by upload --journal and lists
recent runs, newest first. Use --run with a run id to list the per-file
results of one run. The journal is an audit trail only; upload never
consults it.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("journal", "", "SQLite journal file (default: output.journal from config)")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.Flags().String("run", "", "show the files of one run")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("journal")
	if path == "" {
		path = viper.GetString("output.journal")
	}
	if path == "" {
		return fmt.Errorf("no journal configured: pass --journal or set output.journal")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	r, err := journal.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	if runID != "" {
		uploads, err := r.Uploads(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, uploads)
		}
		return formatUploads(out, runID, uploads)
	}

	runs, err := r.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, runs)
	}
	return formatRuns(out, runs)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []journal.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-8s  %4s  %4s  %4s  %s\n",
		"Run", "Started", "Kind", "OK", "Fail", "Skip", "Folder")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, run := range runs {
		started := run.StartedAt.Local().Format(time.DateTime)
		folder := run.Folder
		if run.FinishedAt == nil {
			folder += " (unfinished)"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-8s  %4d  %4d  %4d  %s\n",
			run.ID, started, run.Kind, run.Succeeded, run.Failed, run.Skipped, folder)
	}
	return nil
}

func formatUploads(w io.Writer, runID string, uploads []types.FileResult) error {
	if len(uploads) == 0 {
		fmt.Fprintf(w, "No files recorded for run %s.\n", runID)
		return nil
	}

	fmt.Fprintf(w, "%-40s  %-8s  %-16s  %4s  %3s  %s\n",
		"File", "Status", "Failure", "HTTP", "Try", "Placeholders")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, res := range uploads {
		code := "-"
		if res.StatusCode != 0 {
			code = fmt.Sprint(res.StatusCode)
		}
		fmt.Fprintf(w, "%-40s  %-8s  %-16s  %4s  %3d  %s\n",
			res.File, res.Status, res.Kind, code, res.Attempts, strings.Join(res.Placeholders, ", "))
	}
	return nil
}
