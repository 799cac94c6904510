package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"submate/internal/dispatch"
	"submate/internal/tasks"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		languageFlag    string
		translateToFlag string
		forceFlag       bool
		queueFlag       bool
		waitFlag        bool
		dedupeFlag      bool
		jsonFlag        bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Generate a subtitle for a media file",
		Long: "Generate a subtitle for a media file.\n\n" +
			"Runs inline by default. With --queue the job is handed to the durable\n" +
			"queue for a worker to pick up; add --wait to block until it finishes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			params := tasks.Params{tasks.ParamFilePath: path}
			if languageFlag != "" {
				params[tasks.ParamAudioLanguage] = languageFlag
			}
			if translateToFlag != "" {
				params[tasks.ParamTranslateTo] = translateToFlag
			}
			if forceFlag {
				params[tasks.ParamForce] = true
			}

			opts := dispatch.EnqueueOptions{
				Immediate:   !queueFlag && !waitFlag,
				Blocking:    waitFlag,
				Deduplicate: dedupeFlag,
			}

			return ctx.withApp(func(a *app) error {
				handle, err := a.dispatcher.Enqueue(cmd.Context(), tasks.TaskTranscription, params, opts)
				if err != nil {
					if skipErr, ok := tasks.AsSkip(err); ok {
						fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %s\n", skipErr.Reason.Message())
						return nil
					}
					return err
				}
				return printHandle(cmd.OutOrStdout(), handle, jsonFlag)
			})
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Audio language hint (e.g. en, ger, spanish)")
	cmd.Flags().StringVar(&translateToFlag, "translate-to", "", "Translate the subtitle to this language")
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Transcribe even when skip rules would apply")
	cmd.Flags().BoolVar(&queueFlag, "queue", false, "Enqueue instead of running inline")
	cmd.Flags().BoolVar(&waitFlag, "wait", false, "Enqueue and wait for the result")
	cmd.Flags().BoolVar(&dedupeFlag, "dedupe", false, "Reuse an active job with identical input")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the raw result as JSON")
	return cmd
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "detect <media-file>",
		Short: "Detect the spoken language of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			params := tasks.Params{tasks.ParamFilePath: path}

			return ctx.withApp(func(a *app) error {
				handle, err := a.dispatcher.Enqueue(cmd.Context(), tasks.TaskLanguageDetection, params,
					dispatch.EnqueueOptions{Immediate: true})
				if err != nil {
					return err
				}
				return printHandle(cmd.OutOrStdout(), handle, jsonFlag)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the raw result as JSON")
	return cmd
}

// printHandle renders a submission result. Queued results arrive as
// decoded JSON maps while inline ones carry typed structs, so rendering
// goes through a JSON round trip to treat both alike.
func printHandle(out io.Writer, handle *dispatch.Handle, asJSON bool) error {
	if handle.Deduplicated {
		fmt.Fprintf(out, "Reusing active job %s\n", handle.JobID)
	}
	if handle.Outcome == nil {
		if !handle.Deduplicated {
			fmt.Fprintf(out, "Enqueued job %s\n", handle.JobID)
		}
		return nil
	}
	if asJSON {
		encoded, err := json.MarshalIndent(handle.Outcome, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	}
	if !handle.Outcome.Success {
		return fmt.Errorf("task failed: %s", handle.Outcome.Error)
	}

	fields := resultFields(handle.Outcome.Data)
	if path := fields["subtitle_path"]; path != "" {
		fmt.Fprintf(out, "Subtitle written to %s\n", path)
	}
	if lang := fields["language"]; lang != "" {
		fmt.Fprintf(out, "Language: %s\n", lang)
	}
	if len(fields) == 0 {
		fmt.Fprintln(out, "Done")
	}
	return nil
}

func resultFields(data any) map[string]string {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		return nil
	}
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		if s, ok := value.(string); ok && s != "" {
			fields[key] = s
		}
	}
	return fields
}
