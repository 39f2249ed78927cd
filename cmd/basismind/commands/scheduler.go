package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/basismind/basismind/internal/scheduler"
	"github.com/basismind/basismind/internal/scheduler/jobs"
)

// Cron schedules, seconds field first. Ingestion runs before the
// decision so the day's row is in place.
const (
	ingestSchedule   = "0 0 18 * * MON-FRI"
	decisionSchedule = "0 30 18 * * MON-FRI"
	triggerSchedule  = "0 0 9-17 * * MON-FRI"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Start the scheduler daemon or manage its jobs.

Registered jobs:
- daily-ingest:   weekdays at 18:00 (fetch and persist market data)
- daily-decision: weekdays at 18:30 (compute the decision report)
- trigger-check:  weekdays hourly 9-17 (intraday re-evaluation triggers)

Example:
  go run ./cmd/basismind scheduler start
  go run ./cmd/basismind scheduler list
  go run ./cmd/basismind scheduler run daily-ingest
  go run ./cmd/basismind scheduler status`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution history",
		RunE:  showJobStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func initScheduler() (*scheduler.Scheduler, *deps, error) {
	d, err := initDeps()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(d.log)

	if d.pipeline != nil {
		if err := sched.AddJob(jobs.NewIngestJob(d.pipeline, ingestSchedule, d.log)); err != nil {
			d.Close()
			return nil, nil, err
		}
	}
	if err := sched.AddJob(jobs.NewDecisionJob(d.orchestrator, decisionSchedule, d.log)); err != nil {
		d.Close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewTriggerJob(d.orchestrator, d.alerts, triggerSchedule, d.log)); err != nil {
		d.Close()
		return nil, nil, err
	}

	return sched, d, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	fmt.Println("Registered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	history, err := sched.History(jobName)
	if err != nil {
		return err
	}
	if results := history.LatestResults(1); len(results) == 1 {
		result := results[0]
		if result.Success {
			fmt.Printf("Job finished in %s\n", result.Duration.Round(time.Millisecond))
		} else {
			return fmt.Errorf("job failed: %s", result.Error)
		}
	}
	return nil
}

func showJobStatus(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	for _, name := range sched.JobNames() {
		history, err := sched.History(name)
		if err != nil {
			continue
		}

		fmt.Printf("%s\n", name)
		fmt.Printf("  Total runs: %d\n", len(history.Results))
		fmt.Printf("  Success rate: %.1f%%\n", history.SuccessRate()*100)

		for _, result := range history.LatestResults(5) {
			status := "ok"
			if !result.Success {
				status = "failed: " + result.Error
			}
			fmt.Printf("  %s  %s\n", result.StartTime.Format("2006-01-02 15:04:05"), status)
		}
		fmt.Println()
	}
	return nil
}
