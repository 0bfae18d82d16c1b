package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kindling/internal/domain"
	"kindling/internal/search"
)

type filterFlags struct {
	stages  []string
	types   []string
	efforts []string
	tags    []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.stages, "stage", nil, "filter by stage (repeatable)")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "filter by type (repeatable)")
	cmd.Flags().StringSliceVar(&f.efforts, "effort", nil, "filter by effort (repeatable)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "filter by tag (repeatable)")
}

func (f *filterFlags) filters() (search.Filters, error) {
	var out search.Filters
	for _, s := range f.stages {
		stage := domain.Stage(s)
		if !stage.Valid() {
			return out, fmt.Errorf("unknown stage %q", s)
		}
		out.Stages = append(out.Stages, stage)
	}
	for _, s := range f.types {
		t := domain.IdeaType(s)
		if !t.Valid() {
			return out, fmt.Errorf("unknown type %q", s)
		}
		out.Types = append(out.Types, t)
	}
	for _, s := range f.efforts {
		e := domain.Effort(s)
		if !e.Valid() {
			return out, fmt.Errorf("unknown effort %q", s)
		}
		out.Efforts = append(out.Efforts, e)
	}
	out.Tags = f.tags
	return out, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List ideas",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, "", &f)
		},
	}
	f.register(cmd)
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search ideas by title, description, notes and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, strings.Join(args, " "), &f)
		},
	}
	f.register(cmd)
	return cmd
}

func runSearch(cmd *cobra.Command, opts *rootOptions, query string, f *filterFlags) error {
	filters, err := f.filters()
	if err != nil {
		return err
	}
	return withSession(cmd, opts, func(ctx context.Context, s *session) error {
		return printIdeas(cmd.OutOrStdout(), s.store.Search(query, filters))
	})
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				idea, err := resolveIdea(s, args[0])
				if err != nil {
					return err
				}
				return printIdea(cmd.OutOrStdout(), idea)
			})
		},
	}
}

// resolveIdea finds an idea by full id or by an unambiguous id prefix.
func resolveIdea(s *session, ref string) (domain.Idea, error) {
	if idea, ok := s.store.Idea(ref); ok {
		return idea, nil
	}
	var found []domain.Idea
	for _, idea := range s.store.Snapshot().Ideas {
		if strings.HasPrefix(idea.ID, ref) {
			found = append(found, idea)
		}
	}
	switch len(found) {
	case 0:
		return domain.Idea{}, fmt.Errorf("idea %q not found", ref)
	case 1:
		return found[0], nil
	}
	return domain.Idea{}, fmt.Errorf("id prefix %q matches %d ideas", ref, len(found))
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		stage       string
		ideaType    string
		effort      string
		notes       string
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Capture a new idea",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := domain.IdeaDraft{
				Title:       strings.Join(args, " "),
				Description: description,
				Stage:       domain.Stage(stage),
				Type:        domain.IdeaType(ideaType),
				Effort:      domain.Effort(effort),
				Notes:       notes,
				Tags:        tags,
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				idea, err := s.store.Create(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created idea %s: %s\n", idea.ID, idea.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "longer description")
	cmd.Flags().StringVar(&stage, "stage", "", "initial stage (default spark)")
	cmd.Flags().StringVar(&ideaType, "type", "", "idea type (default project)")
	cmd.Flags().StringVar(&effort, "effort", "", "effort estimate (default medium)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var (
		title       string
		description string
		stage       string
		ideaType    string
		effort      string
		notes       string
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an idea",
		Long:  "Change fields of an idea. Only the flags given are applied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.IdeaPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("stage") {
				s := domain.Stage(stage)
				patch.Stage = &s
			}
			if flags.Changed("type") {
				t := domain.IdeaType(ideaType)
				patch.Type = &t
			}
			if flags.Changed("effort") {
				e := domain.Effort(effort)
				patch.Effort = &e
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("tag") {
				patch.Tags = &tags
			}
			return runUpdate(cmd, opts, args[0], patch)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&stage, "stage", "", "new stage")
	cmd.Flags().StringVar(&ideaType, "type", "", "new type")
	cmd.Flags().StringVar(&effort, "effort", "", "new effort")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace tags (repeatable)")
	return cmd
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "move <id> <stage>",
		Short:     "Move an idea to another stage",
		Args:      cobra.ExactArgs(2),
		ValidArgs: stageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage := domain.Stage(args[1])
			if !stage.Valid() {
				return fmt.Errorf("unknown stage %q (valid: %s)", args[1], strings.Join(stageNames(), ", "))
			}
			return runUpdate(cmd, opts, args[0], domain.IdeaPatch{Stage: &stage})
		},
	}
}

func runUpdate(cmd *cobra.Command, opts *rootOptions, ref string, patch domain.IdeaPatch) error {
	return withSession(cmd, opts, func(ctx context.Context, s *session) error {
		idea, err := resolveIdea(s, ref)
		if err != nil {
			return err
		}
		updated, err := s.store.Update(ctx, idea.ID, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated idea %s (%s)\n", updated.ID, updated.Stage.Label())
		return nil
	})
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an idea",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				idea, err := resolveIdea(s, args[0])
				if err != nil {
					return err
				}
				if err := s.store.Delete(ctx, idea.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted idea %s\n", idea.ID)
				return nil
			})
		},
	}
}

func newTagsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				for _, tag := range search.AllTags(s.store.Snapshot().Ideas) {
					fmt.Fprintln(cmd.OutOrStdout(), tag)
				}
				return nil
			})
		},
	}
}

func stageNames() []string {
	names := make([]string, len(domain.Stages))
	for i, s := range domain.Stages {
		names[i] = string(s)
	}
	return names
}
