/*
Package cli provides command-line helpers used by the radsweep command.

Output Formatting:

Command results are printed as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, outcome); err != nil {
		return err
	}

Results implementing Texter print their own summary in text mode, and
results implementing Table print as aligned columns or CSV.

Exit Codes:

ExitCode maps command errors to process exit codes: 2 for invalid
arguments, 3 when the store is unreachable, 4 on timeout and 1 otherwise.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
