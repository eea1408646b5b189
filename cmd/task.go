package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeryldev/sprintboard/internal/api"
	"github.com/jeryldev/sprintboard/internal/board"
	"github.com/jeryldev/sprintboard/internal/model"
	"github.com/jeryldev/sprintboard/internal/store"
)

// boardSession is one sprint loaded through the synchronizer.
type boardSession struct {
	sprint  *model.Sprint
	members []*model.TeamMember
	sync    *board.Synchronizer
}

// openBoard resolves the sprint and the team roster concurrently, then loads
// the sprint's tasks. A roster failure is logged and leaves names unknown.
func openBoard(ctx context.Context, client *api.Client, sprintOverride int64) (*boardSession, error) {
	bs := &boardSession{
		sync: board.New(client,
			board.WithLogger(logger),
			board.WithRollback(cfg.RollbackOnFailure),
			board.WithNotifier(board.NotifierFunc(func(n board.Notice) {
				logger.WithField("level", n.Level).Debug(n.Message)
			})),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := resolveSprint(gctx, client, sprintOverride)
		bs.sprint = s
		return err
	})
	g.Go(func() error {
		members, err := client.TeamMembers(gctx, cfg.GroupID)
		if err != nil {
			logger.WithError(err).Warn("loading team members failed")
			return nil
		}
		bs.members = members
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := bs.sync.Load(ctx, bs.sprint.ID); err != nil {
		return nil, err
	}
	if err := db.SaveSnapshot(bs.sprint.ID, bs.sync.Columns().All()); err != nil {
		logger.WithError(err).Warn("saving task snapshot failed")
	}
	return bs, nil
}

func (bs *boardSession) find(arg string) (model.Status, int, *model.Task, error) {
	id, err := parseTaskID(arg)
	if err != nil {
		return "", 0, nil, err
	}
	status, idx, t := bs.sync.Columns().Find(id)
	if t == nil {
		return "", 0, nil, fmt.Errorf("task %d not found in sprint %q", id, bs.sprint.Title)
	}
	return status, idx, t, nil
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

var taskCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "List and manage the sprint's tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sprintID, _ := cmd.Flags().GetInt64("sprint")
		offline, _ := cmd.Flags().GetBool("offline")
		if offline {
			return listOfflineTasks(cmd, sprintID)
		}

		client, err := groupClient()
		if err != nil {
			return err
		}
		bs, err := openBoard(commandContext(cmd), client, sprintID)
		if err != nil {
			return err
		}
		return printBoard(cmd.OutOrStdout(), bs.sprint, bs.sync.Columns(), bs.members, time.Time{})
	},
}

// listOfflineTasks prints the last tasks saved for the sprint without
// contacting the server.
func listOfflineTasks(cmd *cobra.Command, sprintID int64) error {
	if sprintID == 0 {
		if err := cfg.RequireGroup(); err != nil {
			return err
		}
		id, ok, err := db.SprintSelection(cfg.GroupID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no sprint selected; pass --sprint or run: sb sprints use <id>")
		}
		sprintID = id
	}

	snap, err := db.Snapshot(sprintID)
	if errors.Is(err, store.ErrNoSnapshot) {
		return fmt.Errorf("no saved tasks for sprint %d; run sb tasks while online first", sprintID)
	}
	if err != nil {
		return err
	}

	cols := board.NewColumns()
	cols.Replace(snap.Tasks)
	sprint := &model.Sprint{ID: sprintID, Title: fmt.Sprintf("Sprint %d", sprintID)}
	return printBoard(cmd.OutOrStdout(), sprint, cols, rosterFromTasks(snap.Tasks), snap.FetchedAt)
}

// rosterFromTasks builds a roster out of the names embedded in task
// assignments, for when the team list cannot be fetched.
func rosterFromTasks(tasks []*model.Task) []*model.TeamMember {
	seen := make(map[int64]bool)
	var roster []*model.TeamMember
	for _, t := range tasks {
		for _, ref := range t.AssignedTo {
			if seen[ref.ID] || (ref.Name == "" && ref.LastName == "") {
				continue
			}
			seen[ref.ID] = true
			roster = append(roster, &model.TeamMember{ID: ref.ID, Name: ref.Name, LastName: ref.LastName})
		}
	}
	return roster
}

// printBoard writes the columns in board order. A non-zero fetchedAt marks
// the listing as saved data.
func printBoard(out io.Writer, sprint *model.Sprint, cols *board.Columns, members []*model.TeamMember, fetchedAt time.Time) error {
	if jsonOutput {
		res := boardJSON{
			Sprint:  toSprintJSON(sprint, true),
			Offline: !fetchedAt.IsZero(),
			Tasks:   make([]taskJSON, 0, cols.Count()),
		}
		if !fetchedAt.IsZero() {
			res.FetchedAt = formatTime(fetchedAt)
		}
		for _, t := range cols.All() {
			res.Tasks = append(res.Tasks, toTaskJSON(t, members))
		}
		return printJSON(res)
	}

	fmt.Fprintf(out, "%s\n", sprint.Title)
	if !fetchedAt.IsZero() {
		fmt.Fprintf(out, "Saved %s (offline)\n", fetchedAt.Local().Format("2006-01-02 15:04"))
	}
	if cols.Count() == 0 {
		fmt.Fprintln(out, "No tasks yet. Add one with: sb task add \"title\" -a <member ids>")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tASSIGNEES\t")
	for _, status := range model.Statuses {
		for _, t := range cols.Tasks(status) {
			flag := ""
			if t.Locked() {
				flag = "reviewed"
			}
			names := strings.Join(model.AssigneeNames(t.AssignedTo, members), ", ")
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, status.Title(), truncateStr(t.Title, 40), names, flag)
		}
	}
	return w.Flush()
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task to the Todo column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		assignees, _ := cmd.Flags().GetString("assignees")
		links, _ := cmd.Flags().GetString("links")
		ids, err := model.ParseIDList(assignees)
		if err != nil {
			return err
		}
		draft := model.Draft{
			Title:       strings.TrimSpace(args[0]),
			Description: strings.TrimSpace(desc),
			AssigneeIDs: ids,
			Links:       model.SplitList(links),
		}
		if err := draft.Validate(); err != nil {
			return err
		}

		client, err := groupClient()
		if err != nil {
			return err
		}
		sprintID, _ := cmd.Flags().GetInt64("sprint")
		ctx := commandContext(cmd)
		bs, err := openBoard(ctx, client, sprintID)
		if err != nil {
			return err
		}

		t, err := bs.sync.Create(ctx, bs.sprint.ID, draft)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(toTaskJSON(t, bs.members))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created task %q (id: %d) in %s\n", t.Title, t.ID, bs.sprint.Title)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := groupClient()
		if err != nil {
			return err
		}
		sprintID, _ := cmd.Flags().GetInt64("sprint")
		ctx := commandContext(cmd)
		bs, err := openBoard(ctx, client, sprintID)
		if err != nil {
			return err
		}
		_, _, t, err := bs.find(args[0])
		if err != nil {
			return err
		}

		draft := model.DraftFromTask(t)
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			draft.Title = strings.TrimSpace(title)
		}
		if cmd.Flags().Changed("description") {
			desc, _ := cmd.Flags().GetString("description")
			draft.Description = strings.TrimSpace(desc)
		}
		if cmd.Flags().Changed("assignees") {
			s, _ := cmd.Flags().GetString("assignees")
			if draft.AssigneeIDs, err = model.ParseIDList(s); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("links") {
			s, _ := cmd.Flags().GetString("links")
			draft.Links = model.SplitList(s)
			if draft.Links == nil {
				draft.Links = []string{}
			}
		}

		updated, err := bs.sync.Edit(ctx, t.ID, draft)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(toTaskJSON(updated, bs.members))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %q (id: %d)\n", updated.Title, t.ID)
		return nil
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another column",
	Long:  "Move a task to todo, in_progress or done. --position is 1-based; the default puts the task at the end of the column.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst, err := model.ParseStatus(args[1])
		if err != nil {
			return err
		}
		pos, _ := cmd.Flags().GetInt("position")
		if pos < 0 {
			return fmt.Errorf("invalid position %d", pos)
		}

		client, err := groupClient()
		if err != nil {
			return err
		}
		sprintID, _ := cmd.Flags().GetInt64("sprint")
		ctx := commandContext(cmd)
		bs, err := openBoard(ctx, client, sprintID)
		if err != nil {
			return err
		}
		src, idx, t, err := bs.find(args[0])
		if err != nil {
			return err
		}

		dstIdx := bs.sync.Columns().Len(dst)
		if src == dst {
			dstIdx--
		}
		if pos > 0 {
			dstIdx = pos - 1
		}
		if err := bs.sync.Move(ctx, t.ID, src, idx, dst, dstIdx); err != nil {
			return err
		}

		_, _, moved := bs.sync.Columns().Find(t.ID)
		if moved == nil {
			moved = t
		}
		if jsonOutput {
			return printJSON(toTaskJSON(moved, bs.members))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved task %q to %s\n", moved.Title, dst.Title())
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := groupClient()
		if err != nil {
			return err
		}
		sprintID, _ := cmd.Flags().GetInt64("sprint")
		ctx := commandContext(cmd)
		bs, err := openBoard(ctx, client, sprintID)
		if err != nil {
			return err
		}
		_, _, t, err := bs.find(args[0])
		if err != nil {
			return err
		}

		if err := bs.sync.Delete(ctx, t.ID); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(toTaskJSON(t, bs.members))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %q\n", t.Title)
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := groupClient()
		if err != nil {
			return err
		}
		sprintID, _ := cmd.Flags().GetInt64("sprint")
		bs, err := openBoard(commandContext(cmd), client, sprintID)
		if err != nil {
			return err
		}
		status, _, t, err := bs.find(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(toTaskJSON(t, bs.members))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:       %s\n", t.Title)
		fmt.Fprintf(out, "Status:      %s\n", status.Title())
		fmt.Fprintf(out, "Assignees:   %s\n", strings.Join(model.AssigneeNames(t.AssignedTo, bs.members), ", "))
		fmt.Fprintf(out, "Reviewed:    %t\n", t.Reviewed)
		fmt.Fprintf(out, "ID:          %d\n", t.ID)
		for _, link := range t.Links() {
			fmt.Fprintf(out, "Link:        %s\n", link)
		}
		if t.Description != "" {
			fmt.Fprintf(out, "\n%s\n", t.Description)
		}
		return nil
	},
}

func init() {
	taskCmd.PersistentFlags().Int64("sprint", 0, "Sprint id (default: the selected sprint)")
	taskCmd.Flags().Bool("offline", false, "Show the last saved tasks without contacting the server")

	taskAddCmd.Flags().StringP("description", "d", "", "Task description")
	taskAddCmd.Flags().StringP("assignees", "a", "", "Comma-separated member ids")
	taskAddCmd.Flags().StringP("links", "l", "", "Comma-separated links")

	taskEditCmd.Flags().StringP("title", "t", "", "New title")
	taskEditCmd.Flags().StringP("description", "d", "", "New description")
	taskEditCmd.Flags().StringP("assignees", "a", "", "New member ids (comma-separated)")
	taskEditCmd.Flags().StringP("links", "l", "", "New links (comma-separated, empty clears)")

	taskMoveCmd.Flags().IntP("position", "p", 0, "1-based position in the target column")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskShowCmd)
	rootCmd.AddCommand(taskCmd)
}
