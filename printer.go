// printer.go — deterministic textual representations of runtime values.
//
// FormatValue is the repr used by the CLI's Result line, the --context
// listing and the REPL. displayString is the console.log form: the
// same rendering except that a top-level string appears without
// quotes. Containers can be cyclic through shared references, so both
// walk with a seen set and print an ellipsis on re-entry.
package scope

import (
	"strconv"
	"strings"
)

// FormatValue renders v for program output.
func FormatValue(v Value) string {
	var b strings.Builder
	writeValue(&b, v, true, map[interface{}]bool{})
	return b.String()
}

func displayString(v Value) string {
	var b strings.Builder
	writeValue(&b, v, false, map[interface{}]bool{})
	return b.String()
}

func writeValue(b *strings.Builder, v Value, quoted bool, seen map[interface{}]bool) {
	switch v.Tag {
	case VTUndef:
		b.WriteString("Undefined")
	case VTBool:
		if v.Data.(bool) {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case VTNum:
		b.WriteString(formatNumber(v.Data.(float64)))
	case VTStr:
		s := v.Data.(*StrObject).String()
		if quoted {
			b.WriteString(strconv.Quote(s))
		} else {
			b.WriteString(s)
		}
	case VTArr:
		a := v.Data.(*ArrObject)
		if seen[a] {
			b.WriteString("[...]")
			return
		}
		seen[a] = true
		b.WriteByte('[')
		for i, it := range a.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, it, true, seen)
		}
		b.WriteByte(']')
		delete(seen, a)
	case VTObj:
		writeObject(b, v.Data.(*Object), seen)
	case VTEnv:
		e := v.Data.(*Env)
		if seen[e] {
			b.WriteString("<scope ...>")
			return
		}
		seen[e] = true
		b.WriteString("<scope ")
		writeObject(b, e.Store(), seen)
		b.WriteByte('>')
		delete(seen, e)
	case VTFun:
		f := v.Data.(*Fun)
		if f.Native != nil {
			b.WriteString("<builtin " + f.Name + ">")
			return
		}
		b.WriteString("<function(" + strings.Join(f.Params, ", ") + ")>")
	default:
		b.WriteString("<unknown>")
	}
}

func writeObject(b *strings.Builder, o *Object, seen map[interface{}]bool) {
	if seen[o] {
		b.WriteString("{...}")
		return
	}
	seen[o] = true
	b.WriteByte('{')
	for i, k := range o.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		v, _ := o.Get(k)
		writeValue(b, v, true, seen)
	}
	b.WriteByte('}')
	delete(seen, o)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
