package ast

// TypesEqual is the structural, non-expanding type comparison ("CompareTypesEq"
// in spec §4.4): two types match iff their shapes, volatility, widths, member
// sequences (name/bits/type) and variadicness agree, WITHOUT resolving any
// RefType through a TypeSymbol first (that expansion, and the resulting
// CompareTypesEquiv, live in internal/sem, which is the only stage with a
// scope to expand through). TypesEqual is what internal/symtab uses to decide
// whether two function/global-variable declarations name the same type.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Volatile() != b.Volatile() {
		return false
	}
	switch av := a.(type) {
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	case *RefType:
		bv, ok := b.(*RefType)
		return ok && av.Name == bv.Name
	case *IntType:
		bv, ok := b.(*IntType)
		return ok && av.Width == bv.Width
	case *ArrayType:
		bv, ok := b.(*ArrayType)
		if !ok {
			return false
		}
		if !TypesEqual(av.Inner, bv.Inner) {
			return false
		}
		return arraySizesEqual(av.Size, bv.Size)
	case *FuncType:
		bv, ok := b.(*FuncType)
		if !ok || av.Variadic != bv.Variadic || len(av.Params) != len(bv.Params) {
			return false
		}
		if !TypesEqual(av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Params {
			if !TypesEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case *StructType:
		bv, ok := b.(*StructType)
		return ok && membersEqual(av.Members, bv.Members)
	case *UnionType:
		bv, ok := b.(*UnionType)
		return ok && membersEqual(av.Members, bv.Members)
	default:
		return false
	}
}

func membersEqual(a, b []*MemberData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
		if (a[i].Bits == nil) != (b[i].Bits == nil) {
			return false
		}
		if a[i].Bits != nil && *a[i].Bits != *b[i].Bits {
			return false
		}
		if !TypesEqual(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

// arraySizesEqual compares two (possibly nil) array-size expressions. Both
// nil means "pointer, pointer" (equal). A literal IntExpr on both sides
// compares by value; anything else structurally identical in nil-ness is
// treated as equal since folding an arbitrary constant expression here would
// require the evaluator the spec explicitly scopes out (§1 Non-goals).
func arraySizesEqual(a, b Expr) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	ai, aok := a.(*IntExpr)
	bi, bok := b.(*IntExpr)
	if aok && bok {
		return ai.Value == bi.Value
	}
	return true
}
