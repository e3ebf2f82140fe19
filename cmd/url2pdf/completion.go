package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma-separated
}

// takesValue reports whether the flag consumes the next word.
func (f flagDef) takesValue() bool {
	return f.Type != flagBool
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed argument values (shells, command names)
	TakesFiles  bool     // accepts a file argument
	FilePattern string   // glob for the file argument
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps run flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"engine":     {Values: []string{"rod", "chromedp"}},
	"missing":    {Values: []string{"skip", "placeholder"}},
	"log-format": {Values: []string{"console", "json"}},

	"config":       {FileGlob: "*.yaml,*.yml"},
	"input":        {FileGlob: "*.txt"},
	"output":       {FileGlob: "*.pdf"},
	"metrics-file": {FileGlob: "*.prom"},
	"browser":      {FileGlob: "*"},

	"screenshots": {IsDir: true},
}

// shellNames lists the completion command arguments.
var shellNames = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet,
// enriched with flagCompletionMeta. Flags are returned sorted by name.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	sort.Slice(flags, func(i, j int) bool { return flags[i].Long < flags[j].Long })
	return flags
}

// getCommands returns the command registry for completion.
// Run flags are extracted from the run FlagSet itself.
func getCommands() []commandDef {
	runDefs := extractFlagsFromFlagSet(newRunFlagSet(&runFlags{}))
	names := []string{"run", "doctor", "version", "help", "completion"}

	return []commandDef{
		{
			Name:        "run",
			Desc:        "Capture every URL and build the PDF",
			Flags:       runDefs,
			TakesFiles:  true,
			FilePattern: "*.txt",
		},
		{
			Name:  "doctor",
			Desc:  "Check the browser and environment",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "print the report as JSON"}},
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: names,
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: shellNames,
		},
	}
}

// commandNames returns the names of cmds in order.
func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// flagWords returns every spelling of the flags (--long and -s).
func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	case ShellPowerShell:
		script = generatePowerShell(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shellNames, ", "))
	}
	_, err := io.WriteString(w, script)
	return err
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	names := strings.Join(commandNames(cmds), " ")
	run := cmds[0]

	b.WriteString("# bash completion for url2pdf\n")
	b.WriteString("_url2pdf_completions() {\n")
	b.WriteString("    local cur prev cmd w\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    for w in \"${COMP_WORDS[@]:1:COMP_CWORD-1}\"; do\n")
	fmt.Fprintf(&b, "        case \"$w\" in %s) cmd=\"$w\"; break ;; esac\n", strings.ReplaceAll(names, " ", "|"))
	b.WriteString("    done\n\n")

	// Flag values.
	b.WriteString("    case \"$prev\" in\n")
	for _, f := range run.Flags {
		if !f.takesValue() {
			continue
		}
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") ); return ;;\n", pattern, strings.Join(f.Values, " "))
		case flagDir:
			fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -d -- \"$cur\") ); return ;;\n", pattern)
		case flagFile:
			fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -f -- \"$cur\") ); return ;;\n", pattern)
		default:
			fmt.Fprintf(&b, "        %s) COMPREPLY=(); return ;;\n", pattern)
		}
	}
	b.WriteString("    esac\n\n")

	// Per command.
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		label := c.Name
		if c.Name == "run" {
			label = "\"\"|run"
		}
		fmt.Fprintf(&b, "        %s)\n", label)
		switch {
		case c.Name == "run":
			fmt.Fprintf(&b, "            if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(flagWords(c.Flags), " "))
			b.WriteString("            elif [[ -z \"$cmd\" ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") $(compgen -f -- \"$cur\") )\n", names)
			b.WriteString("            else\n")
			b.WriteString("                COMPREPLY=( $(compgen -f -- \"$cur\") )\n")
			b.WriteString("            fi\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(c.Args, " "))
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(flagWords(c.Flags), " "))
		default:
			b.WriteString("            COMPREPLY=()\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _url2pdf_completions url2pdf\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

// zshEscape escapes text placed inside a single-quoted _arguments definition.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

// zshFileAction returns the _files action for a comma-separated glob list.
func zshFileAction(glob string) string {
	if glob == "" || glob == "*" {
		return "_files"
	}
	globs := strings.Split(glob, ",")
	return fmt.Sprintf("_files -g \"%s\"", strings.Join(globs, " "))
}

// zshFlagArg returns the _arguments definition of one flag.
func zshFlagArg(f flagDef) string {
	desc := zshEscape(f.Desc)
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagDir:
		action = fmt.Sprintf(":%s:_files -/", f.Long)
	case flagFile:
		action = fmt.Sprintf(":%s:%s", f.Long, zshFileAction(f.FileGlob))
	default:
		action = fmt.Sprintf(":%s: ", f.Long)
	}

	if f.Short == "" {
		return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

func generateZsh(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef url2pdf\n\n")
	b.WriteString("_url2pdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")

	b.WriteString("    if (( CURRENT == 2 )) && [[ ${words[CURRENT]} != -* ]]; then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        _files -g \"*.txt\"\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case ${words[2]} in\n")
	var runDef commandDef
	for _, c := range cmds {
		if c.Name == "run" {
			runDef = c
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case c.Name == "help":
			b.WriteString("            _describe 'command' commands\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
		case len(c.Flags) > 0:
			b.WriteString("            _arguments")
			for _, f := range c.Flags {
				b.WriteString(" \\\n                " + zshFlagArg(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("        *)\n")
	b.WriteString("            _arguments -s")
	for _, f := range runDef.Flags {
		b.WriteString(" \\\n                " + zshFlagArg(f))
	}
	fmt.Fprintf(&b, " \\\n                '*:URL list:%s'\n", zshFileAction(runDef.FilePattern))
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _url2pdf url2pdf\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

// fishEscape escapes text placed inside a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	names := strings.Join(commandNames(cmds), " ")

	b.WriteString("# fish completion for url2pdf\n\n")
	b.WriteString("function __fish_url2pdf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    for w in $cmd[2..-1]\n")
	fmt.Fprintf(&b, "        if contains -- $w %s\n", names)
	b.WriteString("            return 1\n")
	b.WriteString("        end\n")
	b.WriteString("    end\n")
	b.WriteString("    return 0\n")
	b.WriteString("end\n\n")

	b.WriteString("function __fish_url2pdf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    contains -- $argv[1] $cmd[2..-1]\n")
	b.WriteString("end\n\n")

	b.WriteString("complete -c url2pdf -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c url2pdf -n __fish_url2pdf_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_url2pdf_using_command %s'", c.Name)
		if c.Name == "run" {
			cond = "'__fish_url2pdf_needs_command; or __fish_url2pdf_using_command run'"
			b.WriteString("complete -c url2pdf -n " + cond + " -F\n")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c url2pdf -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		for _, f := range c.Flags {
			line := "complete -c url2pdf -n " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagFile:
				line += " -r -F"
			default:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'", fishEscape(f.Desc))
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

// psList formats words as a PowerShell array literal.
func psList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + strings.ReplaceAll(w, "'", "''") + "'"
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder
	run := cmds[0]

	b.WriteString("# PowerShell completion for url2pdf\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName url2pdf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	fmt.Fprintf(&b, "    $commands = %s\n", psList(commandNames(cmds)))
	b.WriteString("    $elements = @($commandAst.CommandElements | Select-Object -Skip 1 | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    if ($wordToComplete -ne '' -and $elements.Count -gt 0) {\n")
	b.WriteString("        $elements = @($elements | Select-Object -First ($elements.Count - 1))\n")
	b.WriteString("    }\n")
	b.WriteString("    $prev = if ($elements.Count -gt 0) { $elements[-1] } else { '' }\n")
	b.WriteString("    $command = ''\n")
	b.WriteString("    foreach ($e in $elements) {\n")
	b.WriteString("        if ($commands -contains $e) { $command = $e; break }\n")
	b.WriteString("    }\n\n")

	b.WriteString("    $candidates = switch ($prev) {\n")
	for _, f := range run.Flags {
		if f.Type != flagEnum {
			continue
		}
		fmt.Fprintf(&b, "        '--%s' { %s }\n", f.Long, psList(f.Values))
	}
	b.WriteString("        default {\n")
	b.WriteString("            switch ($command) {\n")
	for _, c := range cmds {
		var words []string
		switch {
		case len(c.Args) > 0:
			words = c.Args
		default:
			words = flagWords(c.Flags)
		}
		if c.Name == "run" {
			fmt.Fprintf(&b, "                '' { $commands + %s }\n", psList(words))
		}
		fmt.Fprintf(&b, "                '%s' { %s }\n", c.Name, psList(words))
	}
	b.WriteString("            }\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n\n")

	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) int {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return ExitSuccess
	}

	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		fmt.Fprintln(env.Stderr, "error: "+err.Error())
		if errors.Is(err, ErrUnsupportedShell) {
			return ExitUsage
		}
		return ExitIO
	}
	return ExitSuccess
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: url2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(url2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(url2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    url2pdf completion fish > ~/.config/fish/completions/url2pdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    url2pdf completion powershell | Out-String | Invoke-Expression")
}
