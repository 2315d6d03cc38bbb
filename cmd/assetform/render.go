package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-assetform/pkg/render"
)

func newRenderCommand(c *cli) *cobra.Command {
	var (
		output string
		action string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an empty asset form as HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.orchestrator()
			if err != nil {
				return err
			}
			state, err := o.NewState(cmd.Context())
			if err != nil {
				return err
			}
			html, err := o.Render(cmd.Context(), "html", state, render.RenderOptions{Action: action})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(html)
				return err
			}
			if err := os.WriteFile(output, html, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			_, err = io.WriteString(cmd.ErrOrStderr(), "Form written to "+output+"\n")
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&action, "action", "/assets", "form action URL")
	return cmd
}
