package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	scope "github.com/scope-lang/scope"
)

const (
	appName     = "scope"
	historyFile = ".scope_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("Scope %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", scope.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(scope.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Scope %s

Usage:
  %s run <file.scp> [--context]   Run a script and print its result.
  %s repl                         Start the REPL.
  %s version                      Print the version.

The --context flag additionally prints every top-level binding,
sorted by name.
`, scope.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	showContext := false
	files := []string{}
	for _, a := range args {
		switch {
		case a == "--context":
			showContext = true
		case strings.HasPrefix(a, "-"):
			fmt.Fprintf(os.Stderr, "%s: unknown flag %q\n", appName, a)
			fmt.Fprintf(os.Stderr, "usage: %s run <file.scp> [--context]\n", appName)
			return 1
		default:
			files = append(files, a)
		}
	}
	if len(files) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.scp> [--context]\n", appName)
		return 1
	}
	file := files[0]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	res, err := scope.EvalFileSource(filepath.Base(file), string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	fmt.Printf("Result: %s\n", scope.FormatValue(res.Value))

	if showContext {
		bindings := res.Ip.ContextBindings()
		sort.Slice(bindings, func(i, j int) bool {
			return bindings[i].Name < bindings[j].Name
		})
		for _, b := range bindings {
			fmt.Printf("%s = %s\n", b.Name, scope.FormatValue(b.Val))
		}
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := scope.NewInterpreter()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			switch strings.TrimSpace(strings.ToLower(code)) {
			case ":quit":
				return 0
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}

		if strings.TrimSpace(code) == "" {
			continue
		}

		v, err := ip.EvalSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(scope.WrapErrorWithSource(err, code).Error()))
			continue
		}
		fmt.Println(blue(scope.FormatValue(v)))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe accumulates lines until the buffer parses or fails
// with a definite (non-truncation) error.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := scope.Parse(src)
		if perr == nil {
			return src, true
		}
		if scope.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
