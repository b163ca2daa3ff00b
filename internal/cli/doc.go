// Package cli renders pipeline progress and results on the terminal.
//
// Progress implements pipeline.Observer. On an interactive terminal it shows
// a spinner for the running stage and a one-line summary when the stage
// ends. At the end of a run the collected stages are rendered as a table:
//
//	progress := cli.NewProgress(os.Stderr, cli.IsTerminal(os.Stderr))
//	err := p.Run(ctx, req)
//	progress.Render(os.Stdout)
//
// Colors come from go-pretty's text package and can be switched off
// globally with text.DisableColors when output is not a terminal.
package cli
