package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeryldev/sprintboard/internal/api"
	"github.com/jeryldev/sprintboard/internal/model"
)

var announcementsCmd = &cobra.Command{
	Use:     "announcements",
	Aliases: []string{"news"},
	Short:   "Show the course announcements",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := managementClient()
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		if page < 1 {
			return fmt.Errorf("invalid page %d", page)
		}

		res, err := client.Announcements(commandContext(cmd), cfg.ManagementID, page)
		if err != nil {
			return err
		}
		logger.WithField("page", res.CurrentPage).WithField("count", len(res.Items)).Debug("announcements loaded")

		if jsonOutput {
			return printJSON(toAnnouncementPageJSON(res))
		}

		out := cmd.OutOrStdout()
		if len(res.Items) == 0 {
			fmt.Fprintln(out, "No announcements.")
		}
		for i, a := range res.Items {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printAnnouncement(out, a)
		}
		fmt.Fprintf(out, "\nPage %d of %d\n", res.CurrentPage, res.LastPage)
		return nil
	},
}

func printAnnouncement(out io.Writer, a *model.Announcement) {
	fmt.Fprintf(out, "%s  %s  (%s)\n", a.CreatedAt, a.Author(), a.Scope())
	for _, line := range strings.Split(a.Text(), "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
	for _, f := range a.Files {
		fmt.Fprintf(out, "  file:  %s  %s\n", f.Name, f.URL)
	}
	for _, l := range a.Links {
		fmt.Fprintf(out, "  link:  %s\n", l.URL)
	}
	for _, v := range a.Videos {
		fmt.Fprintf(out, "  video: %s\n", v.URL())
	}
}

var evaluationsCmd = &cobra.Command{
	Use:   "evaluations",
	Short: "List the course's evaluation templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := managementClient()
		if err != nil {
			return err
		}
		templates, err := client.EvaluationTemplates(commandContext(cmd), cfg.ManagementID)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := make([]templateJSON, len(templates))
			for i, t := range templates {
				out[i] = toTemplateJSON(t)
			}
			return printJSON(out)
		}

		if len(templates) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No evaluation templates in management %d.\n", cfg.ManagementID)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tNAME\tSECTIONS\tCRITERIA")
		for _, t := range templates {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", t.ID, t.Type, truncateStr(t.Name, 40), len(t.Sections), t.CriteriaCount())
		}
		return w.Flush()
	},
}

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Show the group's proposal submission status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, err := client.ProposalStatus(commandContext(cmd))
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(proposalJSON{
				PartA:   status.PartA.Status,
				PartB:   status.PartB.Status,
				Pending: status.Pending(),
			})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Part A:  %s\n", orNone(status.PartA.Status))
		fmt.Fprintf(out, "Part B:  %s\n", orNone(status.PartB.Status))
		if status.Pending() {
			fmt.Fprintln(out, "A proposal part is still pending submission.")
		}
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// managementClient returns an API client for commands scoped to the
// configured management.
func managementClient() (*api.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireManagement(); err != nil {
		return nil, err
	}
	return client, nil
}

func init() {
	announcementsCmd.Flags().IntP("page", "p", 1, "Page number")
	rootCmd.AddCommand(announcementsCmd, evaluationsCmd, proposalCmd)
}
