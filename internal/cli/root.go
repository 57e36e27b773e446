package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the encdec command line with a context that is cancelled on
// SIGINT or SIGTERM.
//
// Execute 运行encdec命令行，上下文在收到SIGINT或SIGTERM时取消。
func Execute(version, commit string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := New()
	root := NewRootCommand(a, fmt.Sprintf("%s (%s)", version, commit))

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(a.Err, err)
	}
	return err
}

// NewRootCommand returns the "encdec" command with all subcommands.
//
// NewRootCommand 返回包含所有子命令的"encdec"命令。
func NewRootCommand(a *App, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "encdec",
		Short: "Encode text to base64, optionally gzipped first, and back",
		Long: "encdec turns arbitrary text into transport-safe base64, optionally gzip-compressing it first, " +
			"and decodes such text back. It runs as a web form or as one-shot commands.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.Out = cmd.OutOrStdout()
			a.Err = cmd.ErrOrStderr()
			a.In = cmd.InOrStdin()

			return a.InitConfig(cmd.Context(), cmd.Flags())
		},
	}

	root.PersistentFlags().StringVar(&a.CfgFile, "config", "", "config file (yaml or json)")
	root.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "log pipeline runs to stderr")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "log format: text, json, auto")

	root.AddCommand(
		NewServeCommand(a),
		NewEncodeCommand(a),
		NewDecodeCommand(a),
		NewExampleCommand(a),
	)

	return root
}
