package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/paia"
	"kindling/internal/search"
	"kindling/internal/store"
)

func newThemeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage recurring themes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				themes := s.store.Snapshot().Themes
				if len(themes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No themes found.")
					return nil
				}
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "TITLE\tOCCURRENCES\tSOURCE")
				for _, t := range themes {
					fmt.Fprintf(w, "%s\t%d\t%s\n", truncate(t.Title, 50), t.Occurrences, t.Source)
				}
				return w.Flush()
			})
		},
	})
	cmd.AddCommand(newThemeAddCmd(opts))
	return cmd
}

func newThemeAddCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		occurrences int
		moments     []string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Record a theme by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				theme, err := s.store.AddTheme(ctx, domain.Theme{
					Title:       args[0],
					Description: description,
					Occurrences: occurrences,
					KeyMoments:  moments,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added theme %s\n", theme.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "theme description")
	cmd.Flags().IntVar(&occurrences, "occurrences", 1, "times the theme came up")
	cmd.Flags().StringSliceVar(&moments, "moment", nil, "key moment (repeatable)")
	return cmd
}

func newLearningCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Manage learnings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List learnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				learnings := s.store.Snapshot().Learnings
				if len(learnings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No learnings found.")
					return nil
				}
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "DATE\tTITLE\tSOURCE")
				for _, l := range learnings {
					fmt.Fprintf(w, "%s\t%s\t%s\n", l.Date, truncate(l.Title, 50), l.Source)
				}
				return w.Flush()
			})
		},
	})

	var learning domain.Learning
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Record a learning by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			learning.Title = args[0]
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				added, err := s.store.AddLearning(ctx, learning)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added learning %s (%s)\n", added.Title, added.Date)
				return nil
			})
		},
	}
	add.Flags().StringVar(&learning.Date, "date", "", "date of the learning (default today)")
	add.Flags().StringVar(&learning.Context, "context", "", "what was going on")
	add.Flags().StringVar(&learning.Discovery, "discovery", "", "what was learned")
	add.Flags().StringVar(&learning.Actionable, "actionable", "", "what to do with it")
	cmd.AddCommand(add)
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data from an export or PAIA notes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "json <file>",
		Short: "Replace all data with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.store.ImportJSON(ctx, payload); err != nil {
					return err
				}
				stats := search.ComputeStats(s.store.Snapshot())
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d ideas, %d themes, %d learnings\n",
					stats.Total, stats.Themes, stats.Learnings)
				return nil
			})
		},
	})
	cmd.AddCommand(newImportPAIACmd(opts))
	return cmd
}

func newImportPAIACmd(opts *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "paia <dir>",
		Short: "Import themes and learnings from a PAIA notes directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := paia.Discover(args[0])
			if err != nil {
				return err
			}
			timeout := commandTimeout
			if watch {
				timeout = 0
			}
			return runSession(cmd, opts, timeout, func(ctx context.Context, s *session) error {
				if err := importPAIA(ctx, cmd, s, files); err != nil {
					return err
				}
				if !watch {
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Watching for changes, Ctrl-C to stop"))
				err := paia.Watch(ctx, files, paia.DefaultDebounce, s.logger, func(ctx context.Context) {
					if err := importPAIA(ctx, cmd, s, files); err != nil {
						s.logger.Warn("PAIA reload failed", zap.Error(err))
					}
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-import whenever the files change")
	return cmd
}

func importPAIA(ctx context.Context, cmd *cobra.Command, s *session, files paia.Files) error {
	themesMD, learningsMD, err := files.Read()
	if err != nil {
		return err
	}
	themes, learnings, err := s.store.ImportPAIA(ctx, themesMD, learningsMD)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d themes and %d learnings\n", themes, learnings)
	return nil
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all data as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				payload, err := s.store.Export()
				if err != nil {
					return err
				}
				if len(args) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), string(payload))
					return err
				}
				if err := os.WriteFile(args[0], payload, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var push bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reload from the server, discarding local-only edits",
		Long: "Reload from the server and replace local state. With --push, local ideas " +
			"the server does not have yet are uploaded first so they survive the reload.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if s.client == nil {
					return store.ErrNoRemote
				}
				if push {
					res, err := s.client.Sync(ctx, s.store.Snapshot().Ideas)
					if err != nil {
						return fmt.Errorf("push: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				}
				if err := s.store.Resync(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d ideas (%s)\n",
					len(s.store.Snapshot().Ideas), s.store.Mode())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&push, "push", false, "upload local ideas before reloading")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				return printStatus(cmd, s)
			})
		},
	}
}

func printStatus(cmd *cobra.Command, s *session) error {
	out := cmd.OutOrStdout()
	data := s.store.Snapshot()
	stats := search.ComputeStats(data)

	mode := s.store.Mode().String()
	if err := s.store.SyncError(); err != nil {
		mode += " " + warnStyle.Render("("+err.Error()+")")
	}
	summary := fmt.Sprintf("%s\n%d ideas  %d building  %d permasolutions\n%d themes  %d learnings\nmode: %s",
		headingStyle.Render("Kindling"), stats.Total, stats.ActiveBuilding, stats.Permasolutions,
		stats.Themes, stats.Learnings, mode)
	fmt.Fprintln(out, panelStyle.Render(summary))

	w := newTable(out)
	fmt.Fprintln(w, "STAGE\tCOUNT")
	for _, stage := range domain.Stages {
		fmt.Fprintf(w, "%s\t%d\n", stage.Label(), stats.ByStage[stage])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if recent := search.Recent(data.Ideas, search.DefaultRecentLimit); len(recent) > 0 {
		fmt.Fprintf(out, "\n%s\n", headingStyle.Render("Recently updated"))
		if err := printIdeas(out, recent); err != nil {
			return err
		}
	}
	return nil
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	var (
		view  string
		model string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.SettingsPatch
			if cmd.Flags().Changed("view") {
				v := domain.View(view)
				patch.DefaultView = &v
			}
			if cmd.Flags().Changed("model") {
				patch.OllamaModel = &model
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				settings := s.store.Snapshot().Settings
				if patch.DefaultView != nil || patch.OllamaModel != nil {
					var err error
					if settings, err = s.store.UpdateSettings(ctx, patch); err != nil {
						return err
					}
				}
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintf(w, "Default view:\t%s\n", settings.DefaultView)
				fmt.Fprintf(w, "Ollama model:\t%s\n", settings.OllamaModel)
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&view, "view", "", "default view (dashboard, kanban, timeline, insights)")
	cmd.Flags().StringVar(&model, "model", "", "preferred Ollama model")
	return cmd
}
