package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"kindling/internal/client"
	"kindling/internal/service/llm"
	"kindling/pkg/api"
)

var errNeedsServer = errors.New("AI features need a server; set KINDLING_SERVER_URL or pass --server")

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var (
		kind   string
		ideaID string
		prompt string
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the local model for a suggestion",
		Long: "Ask the local model for a suggestion. Either pass a free-form --prompt or a " +
			"--type (spark, progress, new-ideas, theme-connection, categorize, insights); " +
			"per-idea types also need --idea.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" && kind == "" {
				return errors.New("either --prompt or --type is required")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if s.client == nil {
					return errNeedsServer
				}
				req := api.SuggestRequest{Prompt: prompt, Type: kind}
				if ideaID != "" {
					idea, err := resolveIdea(s, ideaID)
					if err != nil {
						return err
					}
					req.IdeaID = idea.ID
				} else if llm.Kind(kind).NeedsIdea() {
					return fmt.Errorf("suggestion type %q needs --idea", kind)
				}

				out, err := s.client.Suggest(ctx, req)
				if err != nil {
					return describeAIError(err)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(out.Suggestion))
				if c := out.Categorization; c != nil {
					w := newTable(cmd.OutOrStdout())
					fmt.Fprintf(w, "Stage:\t%s\n", c.Stage)
					fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(c.Tags, ", "))
					fmt.Fprintf(w, "Effort:\t%s\n", c.Effort)
					if err := w.Flush(); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("model: "+out.Model))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "", "suggestion type")
	cmd.Flags().StringVar(&ideaID, "idea", "", "idea id for per-idea suggestion types")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "free-form prompt")
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Chat with the local model about your ideas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if s.client == nil {
					return errNeedsServer
				}
				data := s.store.Snapshot()
				reply, err := s.client.Chat(ctx, message, &llm.ChatContext{
					Ideas:     data.Ideas,
					Themes:    data.Themes,
					Learnings: data.Learnings,
				})
				if err != nil {
					return describeAIError(err)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(reply.Response))
				return nil
			})
		},
	}
}

// describeAIError turns an unreachable model into an actionable message.
func describeAIError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		return fmt.Errorf("the model server is not reachable: %s", apiErr.Message)
	}
	return err
}
