package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"submate/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueCancelCommand(ctx))
	queueCmd.AddCommand(newQueueCancelAllCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show job counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				counts, err := a.store.Counts(cmd.Context())
				if err != nil {
					return err
				}
				var rows [][]string
				total := 0
				for _, status := range queue.AllStatuses() {
					count := counts[status]
					if count == 0 {
						continue
					}
					total += count
					rows = append(rows, []string{string(status), strconv.Itoa(count)})
				}
				if total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})
				out := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				var statuses []queue.Status
				for _, value := range listStatuses {
					statuses = append(statuses, queue.Status(strings.TrimSpace(value)))
				}
				jobs, err := a.store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						shortID(job.ID),
						job.TaskName,
						string(job.Status),
						fmt.Sprintf("%d/%d", job.Attempts, job.MaxAttempts),
						formatAge(job.CreatedAt),
						jobDetail(job),
					})
				}
				out := renderTable(
					[]string{"ID", "Task", "Status", "Attempts", "Age", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a pending job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.dispatcher.Cancel(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", args[0])
				return nil
			})
		},
	}
}

func newQueueCancelAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every pending job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				count, err := a.dispatcher.CancelAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d job(s)\n", count)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearStatuses []string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove jobs from the queue",
		Long: "Remove jobs from the queue.\n\n" +
			"Without --status every job is removed, including history of\n" +
			"completed and failed runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				var statuses []queue.Status
				for _, value := range clearStatuses {
					statuses = append(statuses, queue.Status(strings.TrimSpace(value)))
				}
				count, err := a.store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", count)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&clearStatuses, "status", "s", nil, "Only remove jobs with this status (repeatable)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func jobDetail(job *queue.Job) string {
	switch job.Status {
	case queue.StatusSkipped:
		return job.SkipReason
	case queue.StatusFailed:
		return truncate(job.Error, 60)
	case queue.StatusPending:
		if job.NotBefore.After(time.Now()) {
			return "retry " + formatIn(job.NotBefore)
		}
		return ""
	default:
		return ""
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

func formatAge(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}

func formatIn(t time.Time) string {
	wait := time.Until(t)
	if wait < time.Minute {
		return fmt.Sprintf("in %ds", int(wait.Seconds()))
	}
	return fmt.Sprintf("in %dm", int(wait.Minutes()))
}
