package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count",
		Short:         "Print the number of sales waiting to be synced",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, closeFn, err := rootOpts.openBuffer()
			if err != nil {
				return err
			}
			defer closeFn()

			n := buf.QueueCount(cmd.Context())
			return rootOpts.formatter(cmd).Success(map[string]int{"pending": n}, fmt.Sprintf("%d", n))
		},
	}
}
