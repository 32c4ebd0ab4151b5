package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crunch/internal/deps"
)

func newDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "deps",
		Short:       "Check that required external tools are installed",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := deps.Check(deps.DefaultRequirements())

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "FOUND"
				detail := status.Command
				if !status.Available {
					state = "MISSING"
					detail = status.Detail
					missing++
				}
				rows = append(rows, []string{status.Name, state, detail, status.Description})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Status", "Location", "Purpose"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				out,
			))

			if missing > 0 {
				fmt.Fprintf(out, "\nDownload FFmpeg builds from %s\n", deps.DownloadURL)
				fmt.Fprintln(out, "Extract the archive and add its bin directory to PATH.")
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}
