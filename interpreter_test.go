package scope

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	ip := NewInterpreter()
	v, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("EvalSource error: %v\nsource:\n%s", err, src)
	}
	return v
}

func evalErr(t *testing.T, src string) error {
	t.Helper()
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("expected error, got success\nsource:\n%s", src)
	}
	return err
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNum {
		t.Fatalf("want num %g, got %#v", f, v)
	}
	got := v.Data.(float64)
	if !(got == f) {
		t.Fatalf("want num %g, got %g", f, got)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(*StrObject).String() != s {
		t.Fatalf("want str %q, got %#v", s, v)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %#v", b, v)
	}
}

func wantUndef(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTUndef {
		t.Fatalf("want Undefined, got %#v", v)
	}
}

func wantTypeError(t *testing.T, err error, substr string) {
	t.Helper()
	te, ok := err.(*TypeError)
	if !ok {
		t.Fatalf("want *TypeError, got %T: %v", err, err)
	}
	if !strings.Contains(te.Msg, substr) {
		t.Fatalf("want TypeError containing %q, got %q", substr, te.Msg)
	}
}

func wantReferenceError(t *testing.T, err error, substr string) {
	t.Helper()
	re, ok := err.(*ReferenceError)
	if !ok {
		t.Fatalf("want *ReferenceError, got %T: %v", err, err)
	}
	if !strings.Contains(re.Msg, substr) {
		t.Fatalf("want ReferenceError containing %q, got %q", substr, re.Msg)
	}
}

// --- literals & operators --------------------------------------------------

func Test_Interpreter_Literals(t *testing.T) {
	wantNum(t, evalSrc(t, "42"), 42)
	wantNum(t, evalSrc(t, ".5"), 0.5)
	wantNum(t, evalSrc(t, "1.5e2"), 150)
	wantStr(t, evalSrc(t, `"hi"`), "hi")
	wantStr(t, evalSrc(t, `"say \"hi\""`), `say "hi"`)
	wantBool(t, evalSrc(t, "true"), true)
	wantBool(t, evalSrc(t, "false"), false)
	wantUndef(t, evalSrc(t, "Undefined"))
}

func Test_Interpreter_Arithmetic_Precedence(t *testing.T) {
	wantNum(t, evalSrc(t, "1 + 2 * 3"), 7)
	wantNum(t, evalSrc(t, "(1 + 2) * 3"), 9)
	wantNum(t, evalSrc(t, "7 % 4"), 3)
	wantNum(t, evalSrc(t, "5 / 2"), 2.5)
	wantNum(t, evalSrc(t, "-3 * 2"), -6)
	wantNum(t, evalSrc(t, "var x = 1*2*3*4; x"), 24)
}

func Test_Interpreter_DivisionByZero_IEEE(t *testing.T) {
	v := evalSrc(t, "1 / 0")
	if v.Tag != VTNum || v.Data.(float64) <= 0 {
		t.Fatalf("want +Inf, got %#v", v)
	}
	v = evalSrc(t, "-1 / 0")
	if v.Tag != VTNum || v.Data.(float64) >= 0 {
		t.Fatalf("want -Inf, got %#v", v)
	}
	v = evalSrc(t, "0 / 0")
	if v.Tag != VTNum || v.Data.(float64) == v.Data.(float64) {
		t.Fatalf("want NaN, got %#v", v)
	}
}

func Test_Interpreter_StringConcat(t *testing.T) {
	wantStr(t, evalSrc(t, `"a" + "b"`), "ab")
	wantStr(t, evalSrc(t, `"n=" + 5`), "n=5")
	wantStr(t, evalSrc(t, `5 + "!"`), "5!")
	wantStr(t, evalSrc(t, `"x: " + true`), "x: true")
}

func Test_Interpreter_Comparisons(t *testing.T) {
	wantBool(t, evalSrc(t, "3 < 4"), true)
	wantBool(t, evalSrc(t, "4 <= 4"), true)
	wantBool(t, evalSrc(t, "3 > 4"), false)
	wantBool(t, evalSrc(t, `"abc" < "abd"`), true)
	wantBool(t, evalSrc(t, `"b" >= "a"`), true)
	wantTypeError(t, evalErr(t, `1 < "a"`), "cannot compare")
}

func Test_Interpreter_Equality_ValueVsIdentity(t *testing.T) {
	wantBool(t, evalSrc(t, "1 == 1"), true)
	wantBool(t, evalSrc(t, `"ab" == "ab"`), true)
	wantBool(t, evalSrc(t, `1 == "1"`), false)
	wantBool(t, evalSrc(t, "[1] == [1]"), false)
	wantBool(t, evalSrc(t, "var a = [1]; var b = a; a == b"), true)
	wantBool(t, evalSrc(t, "{} == {}"), false)
	wantBool(t, evalSrc(t, "var o = {}; var p = o; o != p"), false)
	wantBool(t, evalSrc(t, "Undefined == Undefined"), true)
}

func Test_Interpreter_Logical_YieldsDecidingOperand(t *testing.T) {
	wantNum(t, evalSrc(t, "1 && 2"), 2)
	wantNum(t, evalSrc(t, "0 && 2"), 0)
	wantNum(t, evalSrc(t, "0 || 3"), 3)
	wantStr(t, evalSrc(t, `"a" || "b"`), "a")
	// the right side must not run when the left decides
	wantNum(t, evalSrc(t, "var hits = 0; var bump = () -> { hits = hits + 1; 1 }; false && bump(); hits"), 0)
	wantNum(t, evalSrc(t, "var hits = 0; var bump = () -> { hits = hits + 1; 1 }; true || bump(); hits"), 0)
}

func Test_Interpreter_Truthiness(t *testing.T) {
	wantBool(t, evalSrc(t, "!0"), true)
	wantBool(t, evalSrc(t, `!""`), true)
	wantBool(t, evalSrc(t, "!Undefined"), true)
	wantBool(t, evalSrc(t, "!(0/0)"), true)
	wantBool(t, evalSrc(t, `!"x"`), false)
	wantBool(t, evalSrc(t, "![]"), false)
	wantBool(t, evalSrc(t, "!{}"), false)
}

// --- bindings & scoping ----------------------------------------------------

func Test_Interpreter_VarBindingVisibility(t *testing.T) {
	wantNum(t, evalSrc(t, "var x = 6 * 7; x"), 42)
	wantNum(t, evalSrc(t, "var x = 10; var f = () -> { x }; f()"), 10)
}

func Test_Interpreter_VarShadowsOuter(t *testing.T) {
	src := `
var x = 1;
var f = () -> { var x = 2; x };
var inner = f();
[inner, x]
`
	v := evalSrc(t, src)
	a := v.Data.(*ArrObject)
	wantNum(t, a.Items[0], 2)
	wantNum(t, a.Items[1], 1)
}

func Test_Interpreter_AssignMutatesNearestDeclaration(t *testing.T) {
	wantNum(t, evalSrc(t, "var x = 1; var f = () -> { x = 5; }; f(); x"), 5)
}

func Test_Interpreter_AssignUndeclaredBindsLocally(t *testing.T) {
	src := `
var f = () -> { fresh = 9; };
f();
fresh
`
	wantReferenceError(t, evalErr(t, src), "fresh")
}

func Test_Interpreter_AssignToBuiltinShadows(t *testing.T) {
	// Core stays intact: a second interpreter still has the real Math.
	wantNum(t, evalSrc(t, "Math = 5; Math"), 5)
	wantNum(t, evalSrc(t, "Math.pow(2, 3)"), 8)
}

func Test_Interpreter_Closures_ReferenceSemantics(t *testing.T) {
	src := `
var counter = 0;
var tick = () -> { counter = counter + 1; counter };
tick();
tick();
tick()
`
	wantNum(t, evalSrc(t, src), 3)
}

func Test_Interpreter_Closure_ObservesLaterMutation(t *testing.T) {
	src := `
var x = 1;
var read = () -> { x };
x = 99;
read()
`
	wantNum(t, evalSrc(t, src), 99)
}

func Test_Interpreter_ReadUndeclared_ReferenceError(t *testing.T) {
	wantReferenceError(t, evalErr(t, "nope"), "nope is not defined")
}

// --- functions & control flow ----------------------------------------------

func Test_Interpreter_ImplicitReturn_TrailingSemicolonRule(t *testing.T) {
	wantNum(t, evalSrc(t, "var f = (a, b) -> { a + b }; f(2, 3)"), 5)
	wantUndef(t, evalSrc(t, "var f2 = (a, b) -> { a + b; }; f2(2, 3)"))
}

func Test_Interpreter_ReturnStatement(t *testing.T) {
	wantNum(t, evalSrc(t, "var f = (n) -> { if (n > 0) { return n; } 0 - n }; f(5)"), 5)
	wantNum(t, evalSrc(t, "var f = (n) -> { if (n > 0) { return n; } 0 - n }; f(-4)"), 4)
	wantUndef(t, evalSrc(t, "var f = () -> { return; 1 }; f()"))
	wantNum(t, evalSrc(t, `
var find = (xs, x) -> {
    for (var i = 0; i < xs.length; i = i + 1) {
        if (xs[i] == x) { return i; }
    }
    0 - 1
};
find(["a", "b", "c"], "c")
`), 2)
}

func Test_Interpreter_MissingArgumentsAreUndefined(t *testing.T) {
	wantUndef(t, evalSrc(t, "var f = (a, b) -> { b }; f(1)"))
	wantNum(t, evalSrc(t, "var f = (a, b) -> { a }; f(1)"), 1)
}

func Test_Interpreter_ForLoop_And_Break(t *testing.T) {
	wantNum(t, evalSrc(t, `
var total = 0;
for (var i = 1; i <= 10; i = i + 1) {
    total = total + i;
}
total
`), 55)
	wantNum(t, evalSrc(t, `
var n = 0;
for (;;) {
    n = n + 1;
    if (n == 7) { break; }
}
n
`), 7)
}

func Test_Interpreter_Break_UnwindsOnlyInnermostLoop(t *testing.T) {
	src := `
var outer = 0;
for (var i = 0; i < 3; i = i + 1) {
    for (;;) { break; }
    outer = outer + 1;
}
outer
`
	wantNum(t, evalSrc(t, src), 3)
}

func Test_Interpreter_IfElseChain(t *testing.T) {
	src := `
var grade = (n) -> {
    if (n >= 90) { return "A"; } else if (n >= 80) { return "B"; } else { return "C"; }
};
grade(85)
`
	wantStr(t, evalSrc(t, src), "B")
}

func Test_Interpreter_CallNonFunction_TypeError(t *testing.T) {
	wantTypeError(t, evalErr(t, "var x = 5; x(1)"), "not a function")
}

// --- scope-calls & first-class environments --------------------------------

func Test_Interpreter_ScopeCall_BindingsPersistInObject(t *testing.T) {
	src := `
var s = {};
var g = (p) -> { var a = p * 2; };
g{s}(5);
s.a
`
	wantNum(t, evalSrc(t, src), 10)
}

func Test_Interpreter_ScopeCall_ParamOverwritesExisting(t *testing.T) {
	src := `
var s = {p: 1, keep: true};
var g = (p) -> { var a = p * 2; };
g{s}(5);
[s.p, s.a, s.keep]
`
	v := evalSrc(t, src)
	a := v.Data.(*ArrObject)
	wantNum(t, a.Items[0], 5)
	wantNum(t, a.Items[1], 10)
	wantBool(t, a.Items[2], true)
}

func Test_Interpreter_ScopeCall_ClosureIsParent(t *testing.T) {
	// The body still reads names from its closure through the frame.
	src := `
var base = 100;
var s = {};
var g = (p) -> { var a = base + p; };
g{s}(1);
s.a
`
	wantNum(t, evalSrc(t, src), 101)
}

func Test_Interpreter_ScopeCall_AcceptsScopeValue(t *testing.T) {
	src := `
var mk = () -> { var tag = "inner"; scope };
var e = mk();
var f = (n) -> { var z = n; };
f{e}(7);
[e.z, e.tag]
`
	v := evalSrc(t, src)
	a := v.Data.(*ArrObject)
	wantNum(t, a.Items[0], 7)
	wantStr(t, a.Items[1], "inner")
}

func Test_Interpreter_ScopeCall_EvaluatesArgumentsBeforeScopeExpr(t *testing.T) {
	src := `
var order = [];
var mark = (label) -> { order[order.length] = label; };
var target = () -> { mark("scope"); var s = {}; s };
var supply = () -> { mark("arg"); 7 };
var g = (p) -> { p };
g{target()}(supply());
order[0] + "," + order[1]
`
	wantStr(t, evalSrc(t, src), "arg,scope")
}

func Test_Interpreter_ScopeCall_NonScope_TypeError(t *testing.T) {
	wantTypeError(t, evalErr(t, "var g = () -> { 1 }; g{5}()"), "explicit scope")
	wantTypeError(t, evalErr(t, "Math.pow{{}}(2, 3)"), "explicit scope")
}

func Test_Interpreter_ScopeKeyword_AliasesRunningFrame(t *testing.T) {
	src := `
var me = () -> {
    var badge = "here";
    scope
};
var env = me();
env.badge
`
	wantStr(t, evalSrc(t, src), "here")
}

func Test_Interpreter_ScopeKeyword_WritesBackThroughAlias(t *testing.T) {
	src := `
var s = scope;
s.planted = 3;
planted
`
	wantNum(t, evalSrc(t, src), 3)
}

// --- containers ------------------------------------------------------------

func Test_Interpreter_ArrayMutation_And_Extension(t *testing.T) {
	wantStr(t, evalSrc(t, `var arr = ["a","b","c"]; arr[1] = "Z"; arr[1]`), "Z")
	wantNum(t, evalSrc(t, `var arr = ["a","b","c"]; arr[5] = "x"; arr.length`), 6)
	wantUndef(t, evalSrc(t, `var arr = ["a","b","c"]; arr[5] = "x"; arr[4]`))
}

func Test_Interpreter_ArrayOutOfRangeRead_IsUndefined(t *testing.T) {
	wantUndef(t, evalSrc(t, "var a = [1, 2, 3]; a[3]"))
	wantUndef(t, evalSrc(t, "var a = [1, 2, 3]; a[99]"))
	wantUndef(t, evalSrc(t, "var a = [1, 2, 3]; a[-1]"))
}

func Test_Interpreter_ArraysShareByReference(t *testing.T) {
	wantNum(t, evalSrc(t, "var a = [1]; var b = a; b[0] = 5; a[0]"), 5)
}

func Test_Interpreter_StringMutation_And_Padding(t *testing.T) {
	wantStr(t, evalSrc(t, `var w = "scope"; w[0] = "S"; w`), "Scope")
	wantStr(t, evalSrc(t, `var s = "ab"; s[4] = "x"; s`), "ab  x")
	wantNum(t, evalSrc(t, `var s = "ab"; s[4] = "x"; s.length`), 5)
	wantStr(t, evalSrc(t, `var a = "hi"; var b = a; b[0] = "H"; a`), "Hi")
	wantUndef(t, evalSrc(t, `"abc"[9]`))
	wantStr(t, evalSrc(t, `"abc"[1]`), "b")
}

func Test_Interpreter_StringIndexWrite_SplicesWholeString(t *testing.T) {
	wantStr(t, evalSrc(t, `var s = "abc"; s[1] = "XY"; s`), "aXYc")
	wantNum(t, evalSrc(t, `var s = "abc"; s[1] = "XY"; s.length`), 4)
	wantStr(t, evalSrc(t, `var s = "abc"; s[1] = ""; s`), "ac")
	wantTypeError(t, evalErr(t, `var s = "abc"; s[0] = 5`), "needs a string")
}

func Test_Interpreter_ObjectAccess(t *testing.T) {
	wantNum(t, evalSrc(t, "var o = {a: 1, b: 2}; o.b"), 2)
	wantNum(t, evalSrc(t, `var o = {a: 1}; o["a"]`), 1)
	wantUndef(t, evalSrc(t, "var o = {}; o.missing"))
	wantNum(t, evalSrc(t, `var o = {}; var k = "dyn"; o[k] = 4; o.dyn`), 4)
	wantNum(t, evalSrc(t, `var o = {"spaced key": 8}; o["spaced key"]`), 8)
}

func Test_Interpreter_MemberAccessOnNumber_TypeError(t *testing.T) {
	wantTypeError(t, evalErr(t, "(5).x"), "no members")
	wantTypeError(t, evalErr(t, "true[0]"), "not indexable")
}

// --- interpreter surface ---------------------------------------------------

func Test_Interpreter_ContextBindings(t *testing.T) {
	ip := NewInterpreter()
	if _, err := ip.EvalSource("var b = 2; var a = 1;"); err != nil {
		t.Fatalf("EvalSource: %v", err)
	}
	bs := ip.ContextBindings()
	if len(bs) != 2 {
		t.Fatalf("want 2 bindings, got %d", len(bs))
	}
	// insertion order, not sorted
	if bs[0].Name != "b" || bs[1].Name != "a" {
		t.Fatalf("want [b a], got [%s %s]", bs[0].Name, bs[1].Name)
	}
	wantNum(t, bs[0].Val, 2)
	wantNum(t, bs[1].Val, 1)
}

func Test_Interpreter_GlobalPersistsAcrossEvalCalls(t *testing.T) {
	ip := NewInterpreter()
	if _, err := ip.EvalSource("var x = 4;"); err != nil {
		t.Fatalf("EvalSource: %v", err)
	}
	v, err := ip.EvalSource("x * x")
	if err != nil {
		t.Fatalf("EvalSource: %v", err)
	}
	wantNum(t, v, 16)
}

func Test_Interpreter_Apply(t *testing.T) {
	ip := NewInterpreter()
	fn, err := ip.EvalSource("(a, b) -> { a + b }")
	if err != nil {
		t.Fatalf("EvalSource: %v", err)
	}
	v, err := ip.Apply(fn, []Value{Num(2), Num(3)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	wantNum(t, v, 5)
}

func Test_Interpreter_EvalIn_BindsInSuppliedEnvOnly(t *testing.T) {
	ip := NewInterpreter()
	sandbox := NewEnv(ip.Core)
	ast, err := Parse("var x = Math.pow(2, 3); x - 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := ip.EvalIn(ast, sandbox)
	if err != nil {
		t.Fatalf("EvalIn: %v", err)
	}
	wantNum(t, v, 6)
	got, ok := sandbox.Get("x")
	if !ok {
		t.Fatalf("x not bound in the supplied env")
	}
	wantNum(t, got, 8)
	if _, ok := ip.Global.Get("x"); ok {
		t.Fatalf("x leaked into Global")
	}
}

func Test_Interpreter_EvalIn_RecoversRuntimeErrors(t *testing.T) {
	ip := NewInterpreter()
	ast, err := Parse("nope + 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, rerr := ip.EvalIn(ast, NewEnv(ip.Core))
	wantReferenceError(t, rerr, "nope is not defined")
}

func Test_Interpreter_RegisterNative(t *testing.T) {
	ip := NewInterpreter()
	ip.RegisterNative(ip.Core, "double", func(_ *Interpreter, args []Value) Value {
		return Num(argNum("double", args, 0) * 2)
	})
	v, err := ip.EvalSource("double(21)")
	if err != nil {
		t.Fatalf("EvalSource: %v", err)
	}
	wantNum(t, v, 42)
	wantTypeError(t, evalErrOn(t, ip, `double("x")`), "must be a number")
	wantTypeError(t, evalErrOn(t, ip, "double{ {} }(1)"), "explicit scope")
}

func evalErrOn(t *testing.T, ip *Interpreter, src string) error {
	t.Helper()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("expected an error from %q", src)
	}
	return err
}

func Test_Interpreter_Determinism(t *testing.T) {
	src := `
var o = {z: 1, a: 2};
var s = "" + o + [3, 1, 2] + {n: {m: []}};
s
`
	first := evalSrc(t, src)
	second := evalSrc(t, src)
	wantStr(t, second, first.Data.(*StrObject).String())
}
