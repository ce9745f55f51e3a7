package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func newRootCmd() *cobra.Command {
	cfg := Config{}

	cmd := &cobra.Command{
		Use:   "jackcompiler [flags] <file.jack|directory>",
		Short: "Compile Jack classes to VM code",
		Long: `jackcompiler translates .jack source files into .vm files for the
stack-based virtual machine. Given a directory, every .jack file directly
inside it is compiled as a separate unit.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, args[0], newLogger(cmd.ErrOrStderr(), cfg.Verbose))
		},
	}

	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "print compilation progress")
	cmd.Flags().BoolVarP(&cfg.Tokens, "tokens", "t", false, "also write the token stream of each file as <Name>T.xml")
	cmd.Flags().StringVarP(&cfg.OutDir, "out-dir", "o", "", "output directory (default: next to each source file)")
	cmd.Flags().BoolVar(&cfg.KeepGoing, "keep-going", true, "continue with remaining files after a failure")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
