package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: url2pdf [command] [flags] [input]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Capture every URL and build the PDF (default)")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'url2pdf help <command>' for details on a specific command.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: url2pdf run [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture a full-page screenshot of each URL and assemble them into one PDF.")
	fmt.Fprintln(w, "URLs that fail every attempt are skipped.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    URL list, one per line (default: urls.txt)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <path>        URL list (same as the argument)")
	fmt.Fprintln(w, "  -d, --screenshots <dir>   Screenshot directory (default: screenshots)")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF (default: retry_watermarked_output.pdf)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture:")
	fmt.Fprintln(w, "  -a, --attempts <n>        Attempts per URL (1-50, default: 5)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Navigation timeout per attempt (default: 60s)")
	fmt.Fprintln(w, "      --engine <s>          Browser engine: rod, chromedp")
	fmt.Fprintln(w, "      --viewport <WxH>      Browser viewport (default: 1280x800)")
	fmt.Fprintln(w, "      --browser <path>      Chrome/Chromium binary")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox (Docker/CI)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --dpi <f>             Pixels per inch for page size (default: 96)")
	fmt.Fprintln(w, "      --missing <s>         Missing screenshot: skip, placeholder")
	fmt.Fprintln(w, "      --wm-color <s>        URL watermark color (hex)")
	fmt.Fprintln(w, "      --wm-size <f>         URL watermark font size in points")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Metrics and Publishing:")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics (textfile collector)")
	fmt.Fprintln(w, "      --s3-bucket <s>       Upload the PDF to this bucket")
	fmt.Fprintln(w, "      --s3-prefix <s>       S3 key prefix ({date}, {date:FORMAT})")
	fmt.Fprintln(w, "      --s3-endpoint <url>   S3-compatible endpoint")
	fmt.Fprintln(w, "      --s3-path-style       Path-style addressing (MinIO)")
	fmt.Fprintln(w, "      --s3-screenshots      Also upload the screenshots")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show every attempt")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
	fmt.Fprintln(w, "      --no-summary          Do not print the run summary")
	fmt.Fprintln(w, "      --strict              Exit 1 if any URL was skipped")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  URL2PDF_* variables override the config file; flags override both.")
	fmt.Fprintln(w, "  A .env file in the working directory is loaded first.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: url2pdf doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, the container/CI setup and the output directory.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: url2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: url2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	case "completion":
		printCompletionUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
