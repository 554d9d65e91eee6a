// interpreter_ops.go — operator, member and index semantics.
//
// Arithmetic follows IEEE-754 doubles: division by zero yields a
// signed infinity or NaN, never an error. '+' concatenates when either
// side is a string. Equality is by value for numbers, strings and
// booleans and by identity for arrays, objects, functions and scopes.
// Member and index reads of missing keys or out-of-range positions
// yield Undefined; writes past the end of an array or string extend
// the container.
package scope

import "math"

// truthy implements the language's condition test: false, 0, NaN, the
// empty string and Undefined are falsy, everything else is truthy.
func truthy(v Value) bool {
	switch v.Tag {
	case VTUndef:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTNum:
		f := v.Data.(float64)
		return f != 0 && !math.IsNaN(f)
	case VTStr:
		return len(v.Data.(*StrObject).Rs) > 0
	default:
		return true
	}
}

func evalUnop(op string, v Value) Value {
	switch op {
	case "-":
		if v.Tag != VTNum {
			panic(typeErrorf("unary '-' needs a number, not %s", tagName(v.Tag)))
		}
		return Num(-v.Data.(float64))
	case "!":
		return Bool(!truthy(v))
	}
	panic(typeErrorf("unknown unary operator %q", op))
}

func evalBinop(op string, l, r Value) Value {
	switch op {
	case "+":
		if l.Tag == VTStr || r.Tag == VTStr {
			return Str(displayString(l) + displayString(r))
		}
		return Num(numOperand(op, l) + numOperand(op, r))
	case "-":
		return Num(numOperand(op, l) - numOperand(op, r))
	case "*":
		return Num(numOperand(op, l) * numOperand(op, r))
	case "/":
		return Num(numOperand(op, l) / numOperand(op, r))
	case "%":
		return Num(math.Mod(numOperand(op, l), numOperand(op, r)))
	case "<", "<=", ">", ">=":
		return compareValues(op, l, r)
	case "==":
		return Bool(valueEquals(l, r))
	case "!=":
		return Bool(!valueEquals(l, r))
	}
	panic(typeErrorf("unknown operator %q", op))
}

func numOperand(op string, v Value) float64 {
	if v.Tag != VTNum {
		panic(typeErrorf("'%s' needs numbers, not %s", op, tagName(v.Tag)))
	}
	return v.Data.(float64)
}

func compareValues(op string, l, r Value) Value {
	if l.Tag == VTNum && r.Tag == VTNum {
		a, b := l.Data.(float64), r.Data.(float64)
		switch op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default:
			return Bool(a >= b)
		}
	}
	if l.Tag == VTStr && r.Tag == VTStr {
		a := l.Data.(*StrObject).String()
		b := r.Data.(*StrObject).String()
		switch op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default:
			return Bool(a >= b)
		}
	}
	panic(typeErrorf("'%s' cannot compare %s and %s", op, tagName(l.Tag), tagName(r.Tag)))
}

// valueEquals: by value for primitives and string contents, by shared
// identity for containers, functions and scopes. Mismatched kinds are
// never equal.
func valueEquals(l, r Value) bool {
	if l.Tag != r.Tag {
		return false
	}
	switch l.Tag {
	case VTUndef:
		return true
	case VTBool:
		return l.Data.(bool) == r.Data.(bool)
	case VTNum:
		return l.Data.(float64) == r.Data.(float64)
	case VTStr:
		return l.Data.(*StrObject).String() == r.Data.(*StrObject).String()
	case VTArr:
		return l.Data.(*ArrObject) == r.Data.(*ArrObject)
	case VTObj:
		return l.Data.(*Object) == r.Data.(*Object)
	case VTFun:
		return l.Data.(*Fun) == r.Data.(*Fun)
	case VTEnv:
		return l.Data.(*Env) == r.Data.(*Env)
	}
	return false
}

// ───────────────────────── member access ─────────────────────────

func getMember(obj Value, name string) Value {
	switch obj.Tag {
	case VTObj:
		if v, ok := obj.Data.(*Object).Get(name); ok {
			return v
		}
		return Undefined
	case VTEnv:
		if v, ok := obj.Data.(*Env).Get(name); ok {
			return v
		}
		return Undefined
	case VTArr:
		if name == "length" {
			return Num(float64(len(obj.Data.(*ArrObject).Items)))
		}
		return Undefined
	case VTStr:
		if name == "length" {
			return Num(float64(len(obj.Data.(*StrObject).Rs)))
		}
		return Undefined
	}
	panic(typeErrorf("%s has no members", tagName(obj.Tag)))
}

func setMember(obj Value, name string, v Value) {
	switch obj.Tag {
	case VTObj:
		obj.Data.(*Object).Set(name, v)
		return
	case VTEnv:
		obj.Data.(*Env).Define(name, v)
		return
	case VTArr, VTStr:
		panic(typeErrorf("cannot set member %s on a %s", name, tagName(obj.Tag)))
	}
	panic(typeErrorf("%s has no members", tagName(obj.Tag)))
}

// ───────────────────────── index access ─────────────────────────

func indexOperand(key Value) int {
	if key.Tag != VTNum {
		panic(typeErrorf("index must be a number, not %s", tagName(key.Tag)))
	}
	f := key.Data.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(typeErrorf("index must be a finite number"))
	}
	return int(f)
}

func getIndex(obj, key Value) Value {
	switch obj.Tag {
	case VTArr:
		a := obj.Data.(*ArrObject)
		i := indexOperand(key)
		if i < 0 || i >= len(a.Items) {
			return Undefined
		}
		return a.Items[i]
	case VTStr:
		s := obj.Data.(*StrObject)
		i := indexOperand(key)
		if i < 0 || i >= len(s.Rs) {
			return Undefined
		}
		return Str(string(s.Rs[i]))
	case VTObj:
		if v, ok := obj.Data.(*Object).Get(stringKey(key)); ok {
			return v
		}
		return Undefined
	case VTEnv:
		if v, ok := obj.Data.(*Env).Get(stringKey(key)); ok {
			return v
		}
		return Undefined
	}
	panic(typeErrorf("%s is not indexable", tagName(obj.Tag)))
}

func setIndex(obj, key, v Value) {
	switch obj.Tag {
	case VTArr:
		a := obj.Data.(*ArrObject)
		i := indexOperand(key)
		if i < 0 {
			panic(typeErrorf("array index must not be negative"))
		}
		for len(a.Items) <= i {
			a.Items = append(a.Items, Undefined)
		}
		a.Items[i] = v
		return
	case VTStr:
		s := obj.Data.(*StrObject)
		i := indexOperand(key)
		if i < 0 {
			panic(typeErrorf("string index must not be negative"))
		}
		if v.Tag != VTStr {
			panic(typeErrorf("string index assignment needs a string"))
		}
		// Writing past the end pads with spaces. The replacement splices
		// in whole: one character leaves the length alone, a longer
		// string grows it, the empty string deletes the character.
		for len(s.Rs) <= i {
			s.Rs = append(s.Rs, ' ')
		}
		repl := v.Data.(*StrObject).Rs
		out := make([]rune, 0, len(s.Rs)-1+len(repl))
		out = append(out, s.Rs[:i]...)
		out = append(out, repl...)
		out = append(out, s.Rs[i+1:]...)
		s.Rs = out
		return
	case VTObj:
		obj.Data.(*Object).Set(stringKey(key), v)
		return
	case VTEnv:
		obj.Data.(*Env).Define(stringKey(key), v)
		return
	}
	panic(typeErrorf("%s is not indexable", tagName(obj.Tag)))
}

func stringKey(key Value) string {
	if key.Tag != VTStr {
		panic(typeErrorf("object key must be a string, not %s", tagName(key.Tag)))
	}
	return key.Data.(*StrObject).String()
}
