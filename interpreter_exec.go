// interpreter_exec.go — statement and expression evaluation.
//
// The walker is a direct recursion over the S-expression AST. Statement
// execution returns (Value, ctrl): the value feeds the block-value rule
// (a final expression statement without a trailing semicolon supplies
// the block's value) and ctrl carries break/return unwinding. Runtime
// failures panic with *TypeError or *ReferenceError and are recovered
// at the Interpreter entry points in interpreter.go.
package scope

// ctrl is the non-local control signal a statement can raise.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlReturn
)

// execBlock runs a ("block", stmt...) node. Its value is the last
// statement's value, which by the grammar is non-Undefined only when
// the final statement is a bare expression.
func (ip *Interpreter) execBlock(block S, env *Env) (Value, ctrl) {
	last := Undefined
	for _, raw := range block[1:] {
		v, c := ip.execStmt(raw.(S), env)
		if c != ctrlNone {
			return v, c
		}
		last = v
	}
	return last, ctrlNone
}

func (ip *Interpreter) execStmt(node S, env *Env) (Value, ctrl) {
	switch node[0].(string) {
	case "var":
		v := ip.evalExpr(node[2].(S), env)
		env.Define(node[1].(string), v)
		return Undefined, ctrlNone

	case "discard":
		ip.evalExpr(node[1].(S), env)
		return Undefined, ctrlNone

	case "block":
		// Nested blocks share the enclosing frame: var is
		// function-scoped, not block-scoped.
		return ip.execBlock(node, env)

	case "if":
		if truthy(ip.evalExpr(node[1].(S), env)) {
			v, c := ip.execBlock(node[2].(S), env)
			if c != ctrlNone {
				return v, c
			}
			return Undefined, ctrlNone
		}
		if node[3] != nil {
			v, c := ip.execStmt(node[3].(S), env)
			if c != ctrlNone {
				return v, c
			}
		}
		return Undefined, ctrlNone

	case "for":
		return ip.execFor(node, env)

	case "break":
		return Undefined, ctrlBreak

	case "return":
		if node[1] == nil {
			return Undefined, ctrlReturn
		}
		return ip.evalExpr(node[1].(S), env), ctrlReturn

	default:
		return ip.evalExpr(node, env), ctrlNone
	}
}

func (ip *Interpreter) execFor(node S, env *Env) (Value, ctrl) {
	init, cond, update := node[1], node[2], node[3]
	body := node[4].(S)

	if init != nil {
		if v, c := ip.execStmt(init.(S), env); c != ctrlNone {
			return v, c
		}
	}
	for {
		if cond != nil && !truthy(ip.evalExpr(cond.(S), env)) {
			return Undefined, ctrlNone
		}
		v, c := ip.execBlock(body, env)
		if c == ctrlBreak {
			return Undefined, ctrlNone
		}
		if c == ctrlReturn {
			return v, c
		}
		if update != nil {
			ip.evalExpr(update.(S), env)
		}
	}
}

func (ip *Interpreter) evalExpr(node S, env *Env) Value {
	switch node[0].(string) {
	case "num":
		return Num(node[1].(float64))
	case "str":
		return Str(node[1].(string))
	case "bool":
		return Bool(node[1].(bool))

	case "id":
		name := node[1].(string)
		v, ok := env.Get(name)
		if !ok {
			panic(referenceErrorf("%s is not defined", name))
		}
		return v

	case "scoperef":
		return EnvVal(env)

	case "array":
		items := make([]Value, 0, len(node)-1)
		for _, e := range node[1:] {
			items = append(items, ip.evalExpr(e.(S), env))
		}
		return Arr(items)

	case "object":
		o := NewObject()
		for _, p := range node[1:] {
			pair := p.(S)
			o.Set(pair[1].(string), ip.evalExpr(pair[2].(S), env))
		}
		return ObjVal(o)

	case "fun":
		return FunVal(&Fun{
			Params: node[1].([]string),
			Body:   node[2].(S),
			Env:    env,
		})

	case "unop":
		return evalUnop(node[1].(string), ip.evalExpr(node[2].(S), env))

	case "binop":
		op := node[1].(string)
		if op == "&&" || op == "||" {
			return ip.evalLogical(op, node[2].(S), node[3].(S), env)
		}
		l := ip.evalExpr(node[2].(S), env)
		r := ip.evalExpr(node[3].(S), env)
		return evalBinop(op, l, r)

	case "assign":
		return ip.evalAssign(node[1].(S), node[2].(S), env)

	case "get":
		obj := ip.evalExpr(node[1].(S), env)
		return getMember(obj, node[2].(string))

	case "idx":
		obj := ip.evalExpr(node[1].(S), env)
		key := ip.evalExpr(node[2].(S), env)
		return getIndex(obj, key)

	case "call":
		fn := ip.evalExpr(node[1].(S), env)
		args := ip.evalArgs(node[2:], env)
		return ip.applyFunction(fn, nil, args)

	case "scall":
		// Arguments evaluate before the scope expression.
		fn := ip.evalExpr(node[1].(S), env)
		args := ip.evalArgs(node[3:], env)
		scopeV := ip.evalExpr(node[2].(S), env)
		return ip.applyFunction(fn, &scopeV, args)
	}
	panic(typeErrorf("cannot evaluate node %v", node[0]))
}

func (ip *Interpreter) evalArgs(raw []any, env *Env) []Value {
	args := make([]Value, 0, len(raw))
	for _, a := range raw {
		args = append(args, ip.evalExpr(a.(S), env))
	}
	return args
}

// evalLogical short-circuits && and ||, yielding the deciding operand.
func (ip *Interpreter) evalLogical(op string, lNode, rNode S, env *Env) Value {
	l := ip.evalExpr(lNode, env)
	if op == "&&" {
		if !truthy(l) {
			return l
		}
		return ip.evalExpr(rNode, env)
	}
	if truthy(l) {
		return l
	}
	return ip.evalExpr(rNode, env)
}

func (ip *Interpreter) evalAssign(target, valueNode S, env *Env) Value {
	v := ip.evalExpr(valueNode, env)
	switch target[0].(string) {
	case "id":
		env.Assign(target[1].(string), v)
	case "get":
		obj := ip.evalExpr(target[1].(S), env)
		setMember(obj, target[2].(string), v)
	case "idx":
		obj := ip.evalExpr(target[1].(S), env)
		key := ip.evalExpr(target[2].(S), env)
		setIndex(obj, key, v)
	}
	return v
}

// applyFunction implements the calling convention. explicitScope is
// nil for an ordinary call; for a scope-call it must reference an
// object or environment, and the call body executes with that store as
// its own frame, so bindings created inside persist for the caller.
// The frame's parent is always the closure environment.
func (ip *Interpreter) applyFunction(fn Value, explicitScope *Value, args []Value) Value {
	if fn.Tag != VTFun {
		panic(typeErrorf("%s is not a function", tagName(fn.Tag)))
	}
	f := fn.Data.(*Fun)

	if f.Native != nil {
		if explicitScope != nil {
			panic(typeErrorf("builtin %s does not take an explicit scope", f.Name))
		}
		return f.Native(ip, args)
	}

	var frame *Env
	if explicitScope == nil {
		frame = NewEnv(f.Env)
	} else {
		switch explicitScope.Tag {
		case VTObj:
			frame = EnvOver(explicitScope.Data.(*Object), f.Env)
		case VTEnv:
			frame = EnvOver(explicitScope.Data.(*Env).vars, f.Env)
		default:
			panic(typeErrorf("explicit scope must be an object or scope, not %s",
				tagName(explicitScope.Tag)))
		}
	}

	// Parameters overwrite same-named bindings already present in an
	// explicit scope; the store is shared, so the caller observes them.
	for i, p := range f.Params {
		if i < len(args) {
			frame.Define(p, args[i])
		} else {
			frame.Define(p, Undefined)
		}
	}

	v, c := ip.execBlock(f.Body, frame)
	if c == ctrlBreak {
		// break never unwinds past a call boundary
		return Undefined
	}
	return v
}
