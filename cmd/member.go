package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var memberCmd = &cobra.Command{
	Use:     "members",
	Aliases: []string{"team"},
	Short:   "List the group's team members",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := groupClient()
		if err != nil {
			return err
		}
		members, err := client.TeamMembers(commandContext(cmd), cfg.GroupID)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := make([]memberJSON, len(members))
			for i, m := range members {
				out[i] = toMemberJSON(m)
			}
			return printJSON(out)
		}

		if len(members) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No team members in group %d.\n", cfg.GroupID)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, m := range members {
			fmt.Fprintf(w, "%d\t%s\t%s\n", m.ID, m.FullName(), m.Email)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(memberCmd)
}
