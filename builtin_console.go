// builtin_console.go — the console object.
//
// console.log writes to the interpreter's Out sink; console.size asks
// the TermSize collaborator for the host terminal's dimensions. Both
// are injectable, so tests can capture output and pin the size.
package scope

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

func registerConsoleBuiltins(ip *Interpreter) {
	c := NewObject()

	c.Set("log", FunVal(&Fun{Name: "console.log", Native: func(ip *Interpreter, args []Value) Value {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, displayString(a))
		}
		fmt.Fprintln(ip.Out, strings.Join(parts, " "))
		return Undefined
	}}))

	c.Set("size", FunVal(&Fun{Name: "console.size", Native: func(ip *Interpreter, _ []Value) Value {
		cols, rows, err := ip.TermSize()
		if err != nil {
			return Undefined
		}
		o := NewObject()
		o.Set("columns", Num(float64(cols)))
		o.Set("rows", Num(float64(rows)))
		return ObjVal(o)
	}}))

	ip.Core.Define("console", ObjVal(c))
}

// queryTerminalSize is the default TermSize collaborator.
func queryTerminalSize() (cols, rows int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}
