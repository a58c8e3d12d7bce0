package sema

import "github.com/euppal/floralc/internal/types"

// mangleType returns the short per-parameter identifier of spec.md §4.4's
// mangling table: i/u/i32/u32/i16/u16/ch/uch/wch/b for primitives,
// compound <elem>ptr/<elem>arr/<params>to<result>fptr for pointer, array,
// and function types. WideChar and WideUChar both resolve to
// types.WideChar32 and both mangle as "wch"; no "wuch" code is produced.
func mangleType(t *types.Type) string {
	r := types.Resolve(t)
	switch r.Kind {
	case types.Int64:
		return "i"
	case types.UInt64:
		return "u"
	case types.Int32:
		return "i32"
	case types.UInt32:
		return "u32"
	case types.Int16:
		return "i16"
	case types.UInt16:
		return "u16"
	case types.Int8:
		return "ch"
	case types.UInt8:
		return "uch"
	case types.WideChar32:
		return "wch"
	case types.Bool:
		return "b"
	case types.Pointer:
		return mangleType(r.Elem) + "ptr"
	case types.Array:
		return mangleType(r.Elem) + "arr"
	case types.Tuple:
		s := "tup"
		for _, e := range r.Elems {
			s += mangleType(e)
		}
		return s
	case types.Function:
		s := ""
		for _, p := range r.Params {
			s += mangleType(p)
		}
		return s + "to" + mangleType(r.Result) + "fptr"
	case types.Struct:
		return "st" + r.StructInfo.Name
	case types.Void:
		return "v"
	default:
		return "x"
	}
}

// Mangle computes a function's emitted label: the bare name for a
// zero-argument function, otherwise NAME followed by "_" plus the
// per-parameter code of each argument in order (spec.md §4.4).
func Mangle(name string, params []*types.Type) string {
	if len(params) == 0 {
		return name
	}
	s := name
	for _, p := range params {
		s += "_" + mangleType(p)
	}
	return s
}

// MangleMember mangles a struct constructor or method, prepending the
// struct's name as required by SPEC_FULL's supplemented struct-member
// feature: "<Struct>_new_<params>" for a constructor, "<Struct>_<method>_<params>"
// for a regular method (the receiver's address is not counted as a mangled
// parameter: it is always the implicit first argument).
func MangleMember(structName, methodName string, params []*types.Type, isCtor bool) string {
	base := structName + "_" + methodName
	if isCtor {
		base = structName + "_new"
	}
	return Mangle(base, params)
}

// IsEntryPoint reports whether name/params match one of the two accepted
// main signatures (spec.md §4.4): bare `main` with no arguments, or
// `main_i32_u`: (Int32, UInt) for argc/argv.
func IsEntryPoint(mangled string) bool {
	return mangled == "main" || mangled == "main_i32_u"
}
