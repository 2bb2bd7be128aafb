package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ipp23/internal/ioadapt"
	"ipp23/internal/ipp"
	"ipp23/internal/ippcode/errs"
	"ipp23/internal/xmlir"
)

var (
	sourcePath string
	inputPath  string
	debugMode  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ipp23",
	Short: "Interpreter for IPPcode23 XML programs",
	Long: `ipp23 reads an IPPcode23 program serialized as XML and executes it.

At least one of --source or --input must be given; the other one, if
omitted, is read from stdin.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errs.MissingParams.Wrapf("unexpected argument %q", args[0])
		}
		return nil
	},
	SilenceUsage: true,
	RunE:         runInterpreter,
}

func init() {
	rootCmd.Flags().StringVarP(&sourcePath, "source", "s", "", "path to the XML program source (default: stdin)")
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the program's input stream (default: stdin)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "run under the interactive single-step debugger")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "print a stack trace alongside an internal-error exit")

	// cobra/pflag report unknown flags and bad flag values as plain
	// errors, bypassing RunE entirely; fold them into the same
	// ill-formed-command-line bucket as a missing --source/--input
	// (spec.md §6: unknown flags also exit 10).
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errs.MissingParams.Wrap(err)
	})
}

func runInterpreter(cmd *cobra.Command, args []string) error {
	if sourcePath == "" && inputPath == "" {
		return errs.MissingParams.Wrapf("at least one of --source or --input is required")
	}

	src, err := ioadapt.OpenSource(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	inFile, err := ioadapt.OpenSource(inputPath)
	if err != nil {
		return err
	}
	defer inFile.Close()

	prog, err := xmlir.Load(src)
	if err != nil {
		return err
	}

	stdout := ioadapt.NewBufSink(os.Stdout)
	stderr := ioadapt.NewBufSink(os.Stderr)
	defer stdout.Flush()
	defer stderr.Flush()

	vm := ipp.NewVM(prog, ioadapt.NewLineSource(inFile), stdout, stderr)

	if debugMode {
		return vm.RunDebug(os.Stdin)
	}
	return vm.Run()
}

// Execute runs the root command and returns the process exit code to
// use, printing the classified error description (and, under --verbose
// for an internal error, its stack trace) to stderr first.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, err)

	if verbose {
		var ce *errs.CodedError
		if errors.As(err, &ce) && ce.Code() == errs.Internal.Code() {
			if st := ce.StackTrace(); st != nil {
				fmt.Fprintf(os.Stderr, "%+v\n", st)
			}
		}
	}

	return errs.ExitCode(err)
}
