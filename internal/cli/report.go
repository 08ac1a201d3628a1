package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/report"

	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an application report (markdown, html or csv)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			index, err := a.Tracker.RefreshIndex(cmd.Context())
			if err != nil {
				return err
			}

			return writeOutput(cmd, output, func(w io.Writer) error {
				return report.Write(w, f, index, time.Now())
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatMarkdown), "markdown, html or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func newExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked applications (csv, json or excel)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseExportFormat(format)
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			index, err := a.Tracker.RefreshIndex(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" {
				output = report.DefaultExportPath(f, time.Now())
			}
			if err := report.Export(output, f, index); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d jobs to %s\n", len(index), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.ExportCSVFormat), "csv, json or excel")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default job_applications_export_<date>.<ext>)")

	return cmd
}

func newPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Build assistant prompts from tracked jobs and store the answers",
	}

	cmd.AddCommand(
		newAnalysisPromptCommand(),
		newCoverLetterPromptCommand(),
		newBatchPromptCommand(),
		newSaveResponseCommand(),
	)

	return cmd
}

func newAnalysisPromptCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "analysis <job-id>",
		Short: "Prompt asking how well a job fits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			job, err := a.Tracker.Get(cmd.Context(), jobIDArg(args[0]))
			if err != nil {
				return err
			}

			prompt, err := report.AnalysisPrompt(job)
			if err != nil {
				return err
			}

			return writeText(cmd, output, prompt)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func newCoverLetterPromptCommand() *cobra.Command {
	var output, profileFile string

	cmd := &cobra.Command{
		Use:   "cover-letter <job-id>",
		Short: "Prompt asking for a cover letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := ""
			if profileFile != "" {
				data, err := os.ReadFile(profileFile)
				if err != nil {
					return fmt.Errorf("read profile: %w", err)
				}
				profile = string(data)
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			job, err := a.Tracker.Get(cmd.Context(), jobIDArg(args[0]))
			if err != nil {
				return err
			}

			prompt, err := report.CoverLetterPrompt(job, profile)
			if err != nil {
				return err
			}

			return writeText(cmd, output, prompt)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&profileFile, "profile", "", "text file describing you (default built-in profile)")

	return cmd
}

func newBatchPromptCommand() *cobra.Command {
	var (
		output  string
		status  string
		maxJobs int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Prompt comparing the most relevant jobs in a status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseStatus(status)
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			jobs, err := a.Repo.List(cmd.Context())
			if err != nil {
				return err
			}

			prompt, err := report.BatchPrompt(jobs, st, maxJobs)
			if err != nil {
				return err
			}

			return writeText(cmd, output, prompt)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&status, "status", string(models.StatusNotApplied), "status of the jobs to include")
	f.IntVar(&maxJobs, "max-jobs", report.DefaultBatchSize, "number of jobs to include")

	return cmd
}

func newSaveResponseCommand() *cobra.Command {
	var kind, file string

	cmd := &cobra.Command{
		Use:   "save-response <job-id>",
		Short: "Store an assistant answer on a job",
		Long: `Store an assistant answer on a job. Analyses are appended to the notes and a
cover letter replaces the stored one. Reads the answer from --file or stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := report.ParseResponseKind(kind)
			if err != nil {
				return err
			}

			var content []byte
			if file == "" || file == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			job, err := a.Tracker.Get(ctx, jobIDArg(args[0]))
			if err != nil {
				return err
			}

			if err := report.SaveResponse(job, k, string(content), time.Now()); err != nil {
				return err
			}
			if err := a.Repo.Save(ctx, job); err != nil {
				return fmt.Errorf("save job: %w", err)
			}
			if _, err := a.Tracker.RefreshIndex(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s for %s\n", k, job.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(report.ResponseAnalysis), "analysis or cover-letter")
	cmd.Flags().StringVar(&file, "file", "", "file holding the answer (default stdin)")

	return cmd
}

func writeText(cmd *cobra.Command, path, s string) error {
	return writeOutput(cmd, path, func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// writeOutput renders to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, render func(w io.Writer) error) error {
	if path == "" {
		return render(cmd.OutOrStdout())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Written to %s\n", path)
	return nil
}
