package cmd

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeryldev/sprintboard/internal/api"
	"github.com/jeryldev/sprintboard/internal/model"
)

var sprintCmd = &cobra.Command{
	Use:     "sprints",
	Aliases: []string{"sprint"},
	Short:   "List the group's sprints",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := groupClient()
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)

		sprints, err := client.Sprints(ctx, cfg.GroupID)
		if err != nil {
			return err
		}
		current, err := selectedSprint(sprints)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := make([]sprintJSON, len(sprints))
			for i, s := range sprints {
				out[i] = toSprintJSON(s, current != nil && s.ID == current.ID)
			}
			return printJSON(out)
		}

		if len(sprints) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No sprints in group %d.\n", cfg.GroupID)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tTITLE\tSTART\tEND")
		for _, s := range sprints {
			marker := ""
			if current != nil && s.ID == current.ID {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", marker, s.ID, truncateStr(s.Title, 40), s.StartDate, s.EndDate)
		}
		return w.Flush()
	},
}

var sprintUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Select the sprint the board shows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid sprint id %q", args[0])
		}
		client, err := groupClient()
		if err != nil {
			return err
		}

		sprints, err := client.Sprints(commandContext(cmd), cfg.GroupID)
		if err != nil {
			return err
		}
		sprint := model.FindSprint(sprints, id)
		if sprint == nil {
			return fmt.Errorf("sprint %d not found in group %d", id, cfg.GroupID)
		}
		if err := db.SaveSprintSelection(cfg.GroupID, sprint.ID); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(toSprintJSON(sprint, true))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using sprint %q\n", sprint.Title)
		return nil
	},
}

// groupClient returns an API client for commands scoped to the configured
// group.
func groupClient() (*api.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireGroup(); err != nil {
		return nil, err
	}
	return client, nil
}

// selectedSprint returns the saved sprint when it is still listed, else the
// first sprint. It returns nil only when sprints is empty.
func selectedSprint(sprints []*model.Sprint) (*model.Sprint, error) {
	if len(sprints) == 0 {
		return nil, nil
	}
	id, ok, err := db.SprintSelection(cfg.GroupID)
	if err != nil {
		return nil, err
	}
	if ok {
		if s := model.FindSprint(sprints, id); s != nil {
			return s, nil
		}
		logger.WithField("sprint_id", id).Info("saved sprint no longer listed; using first sprint")
	}
	return sprints[0], nil
}

// resolveSprint fetches the sprints and picks the one to work on. A
// non-zero override wins over the saved selection.
func resolveSprint(ctx context.Context, client *api.Client, override int64) (*model.Sprint, error) {
	sprints, err := client.Sprints(ctx, cfg.GroupID)
	if err != nil {
		return nil, err
	}
	if override != 0 {
		if s := model.FindSprint(sprints, override); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("sprint %d not found in group %d", override, cfg.GroupID)
	}
	s, err := selectedSprint(sprints)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no sprints in group %d", cfg.GroupID)
	}
	return s, nil
}

func init() {
	sprintCmd.AddCommand(sprintUseCmd)
	rootCmd.AddCommand(sprintCmd)
}
