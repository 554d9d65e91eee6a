// interpreter.go — public surface of the Scope runtime.
//
// This file holds the runtime value model (Value, ValueTag, the
// constructors), the shared mutable containers (StrObject, ArrObject,
// Object), environments (Env) with the scope-call-friendly frame
// layout, and the Interpreter with its entry points. Evaluation lives
// in interpreter_exec.go; operator semantics in interpreter_ops.go.
//
// Environments are first-class here: an Env's binding frame IS an
// *Object, so a plain object literal can serve as the execution scope
// of a call (f{s}(args)) and the `scope` keyword yields a value that
// aliases the running frame. Mutation through any holder is visible to
// all holders.
package scope

import (
	"fmt"
	"io"
	"os"
)

////////////////////////////////////////////////////////////////////////////////
//                              VALUES
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates the runtime kinds a Value may hold.
// The tag determines what Value.Data contains.
type ValueTag int

const (
	VTUndef ValueTag = iota // undefined (no payload)
	VTBool                  // bool
	VTNum                   // float64
	VTStr                   // *StrObject (mutable rune sequence)
	VTArr                   // *ArrObject (growable slice)
	VTObj                   // *Object (ordered string map)
	VTFun                   // *Fun (closure; native or user-defined)
	VTEnv                   // *Env (first-class environment)
)

// Value is the universal runtime carrier.
//
// Strings, arrays, objects, functions and environments are held by
// pointer, so copies of a Value share the same underlying container.
// Numbers and booleans are carried by value.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Undefined is the singleton undefined Value.
var Undefined = Value{Tag: VTUndef}

// Primitive constructors.
func Bool(b bool) Value   { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value { return Value{Tag: VTNum, Data: f} }

// Str builds a new mutable string value from a Go string.
func Str(s string) Value {
	return Value{Tag: VTStr, Data: &StrObject{Rs: []rune(s)}}
}

// Arr builds an array value owning the given backing slice.
func Arr(xs []Value) Value {
	return Value{Tag: VTArr, Data: &ArrObject{Items: xs}}
}

// ObjVal wraps *Object into a Value.
func ObjVal(o *Object) Value { return Value{Tag: VTObj, Data: o} }

// FunVal wraps *Fun into a Value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

// EnvVal wraps *Env into a Value.
func EnvVal(e *Env) Value { return Value{Tag: VTEnv, Data: e} }

// StrObject is a mutable, index-assignable string. Indexing works in
// runes. Values of string type share the same *StrObject, so an index
// write through one holder is visible through all of them.
type StrObject struct {
	Rs []rune
}

func (s *StrObject) String() string { return string(s.Rs) }

// ArrObject is a growable array. An index write at or past the current
// length extends the array, filling the gap with Undefined.
type ArrObject struct {
	Items []Value
}

// Object is an insertion-ordered mapping from string keys to Values.
// Keys records first-insertion order; Entries is the storage.
type Object struct {
	Entries map[string]Value
	Keys    []string
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{Entries: make(map[string]Value)}
}

// Get retrieves a key's value and whether it is present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.Entries[key]
	return v, ok
}

// Set stores key→v, appending key to the order on first insertion.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.Entries[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Entries[key] = v
}

// Fun represents a function or closure. Functions are first-class
// Values (VTFun).
//
//   - Params — parameter names in order.
//   - Body   — function body as an S-expression block.
//   - Env    — closure environment captured at definition time.
//   - Native — non-nil iff implemented by the host; Body is nil then.
//   - Name   — diagnostic name for natives ("Math.pow"); empty for
//     user functions.
type Fun struct {
	Params []string
	Body   S
	Env    *Env
	Native NativeImpl
	Name   string
}

// NativeImpl is the host implementation of a builtin function. It may
// panic with *TypeError or *ReferenceError; the interpreter recovers
// those at its entry points.
type NativeImpl func(ip *Interpreter, args []Value) Value

////////////////////////////////////////////////////////////////////////////////
//                             ENVIRONMENTS
////////////////////////////////////////////////////////////////////////////////

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward. The frame's storage is an *Object so that environments
// and objects are interchangeable as scope-call targets.
type Env struct {
	vars             *Object
	parent           *Env
	sealParentWrites bool
}

// NewEnv creates a frame with a fresh store and the given parent
// (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{vars: NewObject(), parent: parent}
}

// EnvOver creates a frame whose store IS the supplied object. Bindings
// defined through the frame appear in the object and vice versa. This
// is the mechanism behind explicit-scope calls.
func EnvOver(store *Object, parent *Env) *Env {
	return &Env{vars: store, parent: parent}
}

// SealParentWrites marks this frame as an assignment barrier: an
// assignment walking outward for an existing binding stops here
// instead of climbing to the parent, so names bound in ancestor
// frames (the builtins) are shadowed rather than mutated.
func (e *Env) SealParentWrites() { e.sealParentWrites = true }

// Store exposes the frame's backing object.
func (e *Env) Store() *Object { return e.vars }

// Define binds name in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	e.vars.Set(name, v)
}

// Assign updates the nearest visible binding of name, respecting seal
// barriers. If no assignable binding exists, the name is defined in
// the current frame.
func (e *Env) Assign(name string, v Value) {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars.Get(name); ok {
			cur.vars.Set(name, v)
			return
		}
		if cur.sealParentWrites {
			break
		}
	}
	e.vars.Set(name, v)
}

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars.Get(name); ok {
			return v, true
		}
	}
	return Value{}, false
}

// Names returns the frame's own binding names in insertion order
// (parents excluded).
func (e *Env) Names() []string {
	out := make([]string, len(e.vars.Keys))
	copy(out, e.vars.Keys)
	return out
}

////////////////////////////////////////////////////////////////////////////////
//                             INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// Interpreter evaluates Scope programs. It exposes two well-known
// frames:
//
//   - Core: the builtins (Math, console); sealed against assignment
//     from user code, which shadows in Global instead.
//   - Global: top-level program state. `var` at the top level binds
//     here, and the --context listing reads from here.
//
// Out is the sink console.log writes to (stdout by default). TermSize
// queries the host terminal for console.size; it is a separate
// collaborator so tests can pin the dimensions.
type Interpreter struct {
	Core   *Env
	Global *Env

	Out      io.Writer
	TermSize func() (cols, rows int, err error)
}

// NewInterpreter builds an interpreter with the builtin surface
// installed (see runtime.go).
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		Core: NewEnv(nil),
		Out:  os.Stdout,
	}
	ip.Global = NewEnv(ip.Core)
	ip.Global.SealParentWrites()
	ip.TermSize = queryTerminalSize
	ip.Core.Define("Undefined", Undefined)
	registerMathBuiltins(ip)
	registerConsoleBuiltins(ip)
	return ip
}

// EvalSource parses and evaluates src in the Global environment.
// Top-level bindings persist across calls. On failure the returned
// error is a *LexError, *ParseError, *TypeError or *ReferenceError.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	ast, err := Parse(src)
	if err != nil {
		return Undefined, err
	}
	return ip.Eval(ast)
}

// Eval evaluates an already parsed program in Global.
func (ip *Interpreter) Eval(root S) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *TypeError:
				v, err = Undefined, e
			case *ReferenceError:
				v, err = Undefined, e
			default:
				panic(r)
			}
		}
	}()
	v, _ = ip.execBlock(root, ip.Global)
	return v, nil
}

// EvalIn evaluates an AST in an explicit environment. Hosts use this
// for sandboxed runs; the REPL uses Eval to keep state in Global.
func (ip *Interpreter) EvalIn(root S, env *Env) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *TypeError:
				v, err = Undefined, e
			case *ReferenceError:
				v, err = Undefined, e
			default:
				panic(r)
			}
		}
	}()
	v, _ = ip.execBlock(root, env)
	return v, nil
}

// Apply calls a function value with the given arguments, in the
// ordinary (non-scope-call) convention.
func (ip *Interpreter) Apply(fn Value, args []Value) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *TypeError:
				v, err = Undefined, e
			case *ReferenceError:
				v, err = Undefined, e
			default:
				panic(r)
			}
		}
	}()
	return ip.applyFunction(fn, nil, args), nil
}

// RegisterNative installs a host function under name into the env.
func (ip *Interpreter) RegisterNative(env *Env, name string, impl NativeImpl) {
	env.Define(name, FunVal(&Fun{Native: impl, Name: name}))
}

// Binding is one top-level name/value pair.
type Binding struct {
	Name string
	Val  Value
}

// ContextBindings returns Global's own bindings in insertion order.
func (ip *Interpreter) ContextBindings() []Binding {
	names := ip.Global.Names()
	out := make([]Binding, 0, len(names))
	for _, n := range names {
		v, _ := ip.Global.Get(n)
		out = append(out, Binding{Name: n, Val: v})
	}
	return out
}

func tagName(t ValueTag) string {
	switch t {
	case VTUndef:
		return "Undefined"
	case VTBool:
		return "Boolean"
	case VTNum:
		return "Number"
	case VTStr:
		return "String"
	case VTArr:
		return "Array"
	case VTObj:
		return "Object"
	case VTFun:
		return "Function"
	case VTEnv:
		return "Scope"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}
