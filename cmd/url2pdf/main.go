package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// Without a known command name, arguments are handed to run.
func runMain(ctx context.Context, args []string, env *Environment) int {
	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	cmd := "run"
	if len(cmdArgs) > 0 {
		switch cmdArgs[0] {
		case "run", "doctor", "version", "help", "completion":
			cmd, cmdArgs = cmdArgs[0], cmdArgs[1:]
		case "-h", "--help":
			printUsage(env.Stdout)
			return ExitSuccess
		}
	}

	switch cmd {
	case "doctor":
		return runDoctorCmd(cmdArgs, env)
	case "version":
		fmt.Fprintf(env.Stdout, "url2pdf %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(cmdArgs, env)
	case "completion":
		return runCompletion(cmdArgs, env)
	}

	if err := runCmd(ctx, cmdArgs, env); err != nil {
		if errors.Is(err, errHelpRequested) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error: "+err.Error()+hintFor(err, env))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
