package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-assetform/pkg/agents"
)

func newAgentsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect the agents that can be authorised as reporters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List reporter candidates (excluding yourself)",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.orchestrator()
			if err != nil {
				return err
			}
			list, err := agents.Visible(cmd.Context(), o.Directory())
			if err != nil {
				return err
			}
			return printAgents(cmd.OutOrStdout(), list)
		},
	})

	var limit int
	search := &cobra.Command{
		Use:   "search [query]",
		Short: "Search reporter candidates by name or key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.orchestrator()
			if err != nil {
				return err
			}
			list, err := agents.Visible(cmd.Context(), o.Directory())
			if err != nil {
				return err
			}
			cfg := agents.NewSearchConfig(
				agents.WithDefaultLimit(c.cfg.Agents.DefaultLimit),
				agents.WithMaxLimit(c.cfg.Agents.MaxLimit),
			)
			return printAgents(cmd.OutOrStdout(), agents.Search(list, args[0], limit, cfg))
		},
	}
	search.Flags().IntVar(&limit, "limit", 0, "maximum results (config default when 0)")
	cmd.AddCommand(search)
	return cmd
}

func printAgents(out io.Writer, list []agents.Agent) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No agents found.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKEY")
	for _, agent := range list {
		fmt.Fprintf(tw, "%s\t%s\n", agent.Name, agent.Key)
	}
	return tw.Flush()
}
