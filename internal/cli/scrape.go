package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"linkedin-job-tracker/internal/api/linkedin"
	"linkedin-job-tracker/internal/config"
	"linkedin-job-tracker/internal/report"
	"linkedin-job-tracker/internal/scraper"
	"linkedin-job-tracker/internal/storage/jsonfile"

	"github.com/spf13/cobra"
)

const defaultOutputFile = "linkedin_jobs.json"

type scrapeOptions struct {
	output        string
	keepAttempted bool
	noSave        bool
	maxJobs       int
	search        linkedin.SearchParams
}

func newScrapeCommand() *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape a job posting or a search into job records",
		Long: `Scrape a single job (a /jobs/view/ URL), a search results URL, or a search
built from the keyword flags and the profile defaults. Valid records are saved
to storage and written to the output file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd, func(cfg *config.Config) {
				if opts.maxJobs > 0 {
					cfg.MaxJobs = opts.maxJobs
				}
			})
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			target := ""
			if len(args) == 1 {
				target = strings.TrimSpace(args[0])
			}

			var (
				res    *scraper.Result
				runErr error
			)
			if strings.Contains(target, "/jobs/view/") {
				res, runErr = a.Pipeline.ScrapeJob(ctx, target)
			} else {
				if target == "" {
					target = linkedin.BuildSearchURL("", opts.searchParams(a.SearchParams()))
				}
				res, runErr = a.Pipeline.ScrapeSearch(ctx, target)
			}
			if res == nil {
				return runErr
			}

			if !opts.noSave {
				if err := a.Pipeline.Persist(ctx, res); err != nil {
					return err
				}
			}

			if opts.output != "" {
				if err := scraper.WriteOutput(res, opts.output, opts.keepAttempted); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(res.Valid) > 0 {
				renderIndex(out, report.BuildIndex(res.Valid))
			}
			printSummary(out, res)
			if opts.output != "" {
				fmt.Fprintf(out, "Records written to %s\n", opts.output)
			}

			if runErr != nil {
				return fmt.Errorf("scrape interrupted: %w", runErr)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", defaultOutputFile, "batch file for the valid records (empty to skip)")
	f.BoolVar(&opts.keepAttempted, "keep-attempted", false, "also write every attempted record next to the output (always on when rewriting the input)")
	f.BoolVar(&opts.noSave, "no-save", false, "do not save records to storage")
	f.IntVarP(&opts.maxJobs, "max-jobs", "m", 0, "maximum jobs to scrape (default MAX_JOBS_TO_SCRAPE)")
	f.StringVarP(&opts.search.Keywords, "keywords", "k", "", "search keywords (default from profile or DEFAULT_KEYWORDS)")
	f.StringVarP(&opts.search.Location, "location", "l", "", "search location (default from profile or DEFAULT_LOCATION)")
	f.BoolVarP(&opts.search.Remote, "remote", "r", false, "remote jobs only")
	f.BoolVar(&opts.search.Hybrid, "hybrid", false, "hybrid jobs only")
	f.BoolVarP(&opts.search.EasyApply, "easy-apply", "e", false, "Easy Apply jobs only")
	f.BoolVar(&opts.search.PastWeek, "recent", false, "jobs posted in the past week only")
	f.StringSliceVar(&opts.search.Experience, "seniority", nil, "experience levels: entry, associate, mid-senior, director")
	f.BoolVar(&opts.search.Guest, "guest", true, "use the guest search endpoint")

	return cmd
}

// searchParams lays the flags over the configured search.
func (o *scrapeOptions) searchParams(defaults linkedin.SearchParams) linkedin.SearchParams {
	p := defaults
	if o.search.Keywords != "" {
		p.Keywords = o.search.Keywords
	}
	if o.search.Location != "" {
		p.Location = o.search.Location
	}
	p.Remote = p.Remote || o.search.Remote
	p.Hybrid = p.Hybrid || o.search.Hybrid
	p.EasyApply = p.EasyApply || o.search.EasyApply
	p.PastWeek = p.PastWeek || o.search.PastWeek
	if len(o.search.Experience) > 0 {
		p.Experience = o.search.Experience
	}
	p.Guest = o.search.Guest
	return p
}

func newNormalizeCommand() *cobra.Command {
	var (
		output        string
		keepAttempted bool
		save          bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <records-file>",
		Short: "Re-normalize, score and validate a record file",
		Long: `Read a batch file or a single record file, fill defaults, recompute relevance
and validate every record. Valid records are written back (or to --output).
When the input is rewritten in place, every attempted record is also kept in
<name>.attempted.json so records failing validation are not lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			raws, err := jsonfile.ReadRecords(args[0])
			if err != nil {
				return err
			}
			if len(raws) == 0 {
				return errors.New("no records in file")
			}

			res := a.Pipeline.Normalize(cmd.Context(), raws)

			if output == "" {
				output = args[0]
			}
			// Rewriting the input in place must not lose excluded records.
			if samePath(output, args[0]) {
				keepAttempted = true
			}
			if err := scraper.WriteOutput(res, output, keepAttempted); err != nil {
				return err
			}

			if save {
				if err := a.Pipeline.Persist(cmd.Context(), res); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			printSummary(out, res)
			fmt.Fprintf(out, "Records written to %s\n", output)
			if keepAttempted {
				fmt.Fprintf(out, "Attempted records written to %s\n", scraper.AttemptedPath(output))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default overwrites the input)")
	f.BoolVar(&keepAttempted, "keep-attempted", false, "also write every attempted record next to the output (always on when rewriting the input)")
	f.BoolVar(&save, "save", false, "also save the valid records to storage")

	return cmd
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
