// runtime.go — file-level entry points over the engine surface in
// interpreter.go. EvalFileSource is what the CLI's run subcommand and
// the tests use: one call from source text to (result, bindings).
package scope

// Version is the release string reported by `scope version`.
const Version = "0.3.0"

// RunResult is the outcome of evaluating a program: the top-level
// result value plus the interpreter, whose Global frame holds the
// program's bindings for context inspection.
type RunResult struct {
	Value Value
	Ip    *Interpreter
}

// EvalFileSource builds a fresh interpreter, evaluates src in it, and
// returns the result together with the interpreter. srcName labels
// lex and parse diagnostics (caret snippets); runtime errors pass
// through unchanged.
func EvalFileSource(srcName, src string) (*RunResult, error) {
	ip := NewInterpreter()
	v, err := ip.EvalSource(src)
	if err != nil {
		return nil, WrapErrorWithName(err, srcName, src)
	}
	return &RunResult{Value: v, Ip: ip}, nil
}
