// builtin_math.go — the Math object.
package scope

import "math"

// registerMathBuiltins installs the Math object into Core. Every entry
// takes and returns numbers; wrong argument kinds raise a TypeError.
func registerMathBuiltins(ip *Interpreter) {
	m := NewObject()

	m.Set("E", Num(math.E))
	m.Set("PI", Num(math.Pi))

	unary := func(name string, fn func(float64) float64) {
		full := "Math." + name
		m.Set(name, FunVal(&Fun{Name: full, Native: func(_ *Interpreter, args []Value) Value {
			return Num(fn(argNum(full, args, 0)))
		}}))
	}
	binary := func(name string, fn func(float64, float64) float64) {
		full := "Math." + name
		m.Set(name, FunVal(&Fun{Name: full, Native: func(_ *Interpreter, args []Value) Value {
			return Num(fn(argNum(full, args, 0), argNum(full, args, 1)))
		}}))
	}

	unary("abs", math.Abs)
	unary("acos", math.Acos)
	unary("acosh", math.Acosh)
	unary("asin", math.Asin)
	unary("asinh", math.Asinh)
	unary("atan", math.Atan)
	unary("atanh", math.Atanh)
	binary("atan2", math.Atan2)
	unary("cbrt", math.Cbrt)
	unary("ceil", math.Ceil)
	unary("cos", math.Cos)
	unary("cosh", math.Cosh)
	unary("exp", math.Exp)
	binary("pow", powBuiltin)
	unary("sin", math.Sin)

	ip.Core.Define("Math", ObjVal(m))
}

// powBuiltin: a zero base with a negative exponent yields +Inf, so
// pow(x, 0.5) stays total for every non-negative x.
func powBuiltin(base, exp float64) float64 {
	if base == 0 && exp < 0 {
		return math.Inf(1)
	}
	return math.Pow(base, exp)
}

// argNum fetches args[i] as a number for a builtin.
func argNum(name string, args []Value, i int) float64 {
	if i >= len(args) {
		panic(typeErrorf("%s: missing argument %d", name, i+1))
	}
	if args[i].Tag != VTNum {
		panic(typeErrorf("%s: argument %d must be a number, not %s",
			name, i+1, tagName(args[i].Tag)))
	}
	return args[i].Data.(float64)
}
