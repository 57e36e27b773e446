package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExampleCommand returns the "encdec example" command.
//
// NewExampleCommand 返回"encdec example"命令。
func NewExampleCommand(a *App) *cobra.Command {
	var partFlag string

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Decode the built-in worked example and re-encode it",
		Example: `  encdec example
  encdec example --part decoded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.NewCodecService()
			if err != nil {
				return err
			}

			example, err := svc.Example(cmd.Context())
			if err != nil {
				return err
			}

			switch partFlag {
			case "original":
				fmt.Fprintln(a.Out, example.Original)
			case "decoded":
				fmt.Fprintln(a.Out, example.Decoded)
			case "reencoded":
				fmt.Fprintln(a.Out, example.Reencoded)
			case "all":
				fmt.Fprintf(a.Out, "# original\n%s\n\n# decoded\n%s\n\n# reencoded\n%s\n",
					example.Original, example.Decoded, example.Reencoded)
			default:
				return fmt.Errorf("unknown part %q, expected original, decoded, reencoded or all", partFlag)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&partFlag, "part", "all", "part to print: original, decoded, reencoded, all")
	_ = cmd.RegisterFlagCompletionFunc("part", cobra.FixedCompletions(
		[]string{"original", "decoded", "reencoded", "all"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}
