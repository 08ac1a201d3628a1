package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/report"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// jobIDArg accepts a bare job id or any URL carrying one.
func jobIDArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if id := models.JobIDFromURL(arg); id != "" {
		return id
	}
	return arg
}

func newUpdateCommand() *cobra.Command {
	var status, note, appliedDate string

	cmd := &cobra.Command{
		Use:   "update <job-id>",
		Short: "Update the application status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseStatus(status)
			if err != nil {
				return err
			}
			applied, err := parseDate(appliedDate)
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			job, err := a.Tracker.UpdateStatus(cmd.Context(), jobIDArg(args[0]), st, note, applied)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s is now %s\n", job.Title, job.CompanyName, job.Application.Status)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&status, "status", "s", "", "new status: "+statusNames())
	f.StringVarP(&note, "note", "n", "", "note to append")
	f.StringVarP(&appliedDate, "applied-date", "d", "", "applied date (YYYY-MM-DD), defaults to now")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newPriorityCommand() *cobra.Command {
	var priority, interest string

	cmd := &cobra.Command{
		Use:   "priority <job-id>",
		Short: "Set the priority and interest level of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if priority == "" && interest == "" {
				return fmt.Errorf("set --priority, --interest or both")
			}

			var p, i models.Level
			var err error
			if priority != "" {
				if p, err = models.ParseLevel(priority); err != nil {
					return err
				}
			}
			if interest != "" {
				if i, err = models.ParseLevel(interest); err != nil {
					return err
				}
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			job, err := a.Tracker.SetPriority(cmd.Context(), jobIDArg(args[0]), p, i)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: priority %s, interest %s\n",
				job.ID(), job.Application.Priority, job.Application.InterestLevel)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&interest, "interest", "i", "", "low, medium or high")

	return cmd
}

func newReminderCommand() *cobra.Command {
	var (
		date string
		days int
	)

	cmd := &cobra.Command{
		Use:   "reminder <job-id>",
		Short: "Schedule a follow-up reminder for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseDate(date)
			if err != nil {
				return err
			}
			if days <= 0 {
				return fmt.Errorf("days must be positive")
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			due, err := a.Tracker.SetReminder(cmd.Context(), jobIDArg(args[0]), at, days)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Follow-up set for %s\n", due.Format("2006-01-02"))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&date, "date", "d", "", "reminder date (YYYY-MM-DD)")
	f.IntVar(&days, "days", enrich.DefaultFollowUpDays, "days from now when --date is not given")

	return cmd
}

func newFollowUpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "followups",
		Short: "List jobs whose follow-up is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			due, err := a.Tracker.DueFollowUps(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(due) == 0 {
				fmt.Fprintln(out, "No follow-ups due.")
				return nil
			}

			renderFollowUps(out, due)
			return nil
		},
	}
}

func newBulkUpdateCommand() *cobra.Command {
	var statusFile string

	cmd := &cobra.Command{
		Use:   "bulk-update",
		Short: "Update the status of many jobs from a file",
		Long: `Read a JSON or YAML mapping of job id to status, for example
{"3912345678": "Applied", "3912345679": "Rejected"}, and apply every update.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := readStatusFile(statusFile)
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			results := a.Tracker.BulkUpdate(cmd.Context(), updates)

			ids := make([]string, 0, len(results))
			failed := 0
			for id, err := range results {
				ids = append(ids, id)
				if err != nil {
					failed++
				}
			}
			sort.Strings(ids)

			renderBulkResults(cmd.OutOrStdout(), ids, results)

			if failed > 0 {
				return fmt.Errorf("%d of %d updates failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFile, "status-file", "", "JSON or YAML file mapping job ids to statuses")
	_ = cmd.MarkFlagRequired("status-file")

	return cmd
}

// readStatusFile parses the bulk update mapping. YAML is a superset of JSON,
// so one decoder reads both.
func readStatusFile(path string) (map[string]models.Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read status file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse status file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("status file %s has no updates", path)
	}

	updates := make(map[string]models.Status, len(raw))
	for id, s := range raw {
		st, err := models.ParseStatus(s)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", id, err)
		}
		updates[jobIDArg(id)] = st
	}

	return updates, nil
}

type filterOptions struct {
	status        string
	company       string
	title         string
	location      string
	minRelevance  int
	appliedAfter  string
	appliedBefore string
	output        string
}

func (o *filterOptions) filter() (models.JobFilter, error) {
	f := models.JobFilter{
		Company:      o.company,
		Title:        o.title,
		Location:     o.location,
		MinRelevance: o.minRelevance,
	}

	if o.status != "" {
		st, err := models.ParseStatus(o.status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}

	var err error
	if f.AppliedAfter, err = parseDate(o.appliedAfter); err != nil {
		return f, err
	}
	if f.AppliedBefore, err = parseDate(o.appliedBefore); err != nil {
		return f, err
	}

	return f, nil
}

func newFilterCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List tracked jobs matching the given criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := opts.filter()
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			jobs, err := a.Tracker.Filter(cmd.Context(), criteria)
			if err != nil {
				return err
			}

			index := report.BuildIndex(jobs)

			if opts.output != "" {
				if err := report.ExportJSON(opts.output, index); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(index) == 0 {
				fmt.Fprintln(out, "No jobs match.")
				return nil
			}

			renderIndex(out, index)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.status, "status", "", "exact status: "+statusNames())
	f.StringVar(&opts.company, "company", "", "company name contains")
	f.StringVar(&opts.title, "title", "", "title contains")
	f.StringVar(&opts.location, "location", "", "location contains")
	f.IntVar(&opts.minRelevance, "min-relevance", 0, "minimum relevance score")
	f.StringVar(&opts.appliedAfter, "applied-after", "", "applied on or after (YYYY-MM-DD)")
	f.StringVar(&opts.appliedBefore, "applied-before", "", "applied on or before (YYYY-MM-DD)")
	f.StringVarP(&opts.output, "output", "o", "", "also save the matching index entries as JSON")

	return cmd
}

func newStatsCommand() *cobra.Command {
	var (
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show application statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := a.Tracker.Stats(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			if output != "" || asJSON {
				data, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return fmt.Errorf("encode stats: %w", err)
				}
				if output != "" {
					if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
						return fmt.Errorf("write stats: %w", err)
					}
				}
				if asJSON {
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
			}

			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "also save the statistics as JSON")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")

	return cmd
}

func statusNames() string {
	names := make([]string, len(models.AllStatuses))
	for i, st := range models.AllStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
