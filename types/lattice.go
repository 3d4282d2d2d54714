package types

// IsSubseteq implements the ⊑ relation from spec.md §4.6.
func IsSubseteq(a, b Type) bool {
	if _, ok := b.(AnyType); ok {
		return true
	}
	if _, ok := a.(BottomType); ok {
		return true
	}
	if ua, ok := a.(Union); ok {
		for _, x := range ua.Options {
			if !IsSubseteq(x, b) {
				return false
			}
		}
		return true
	}
	if ub, ok := b.(Union); ok {
		for _, y := range ub.Options {
			if IsSubseteq(a, y) {
				return true
			}
		}
		return false
	}
	if ha, ok := a.(Hinted); ok {
		return IsSubseteq(ha.Inner, b)
	}
	if hb, ok := b.(Hinted); ok {
		return IsSubseteq(a, hb.Inner)
	}
	switch x := a.(type) {
	case PyClass:
		if y, ok := b.(PyClass); ok {
			return x.IsSubclassOf(y)
		}
		return false
	case Literal:
		switch y := b.(type) {
		case Literal:
			return isEqualValue(x.Value, y.Value)
		case PyClass:
			return PyClass{Name: pyClassNameOf(x.Value)}.IsSubclassOf(y)
		}
		return false
	case Generic:
		y, ok := b.(Generic)
		if !ok || len(x.Vars) != len(y.Vars) {
			return false
		}
		if !IsSubseteq(x.Body, y.Body) {
			return false
		}
		for i := range x.Vars {
			if !IsSubseteq(x.Vars[i], y.Vars[i]) {
				return false
			}
		}
		if x.Vararg != nil && y.Vararg != nil {
			return IsSubseteq(x.Vararg.Elem, y.Vararg.Elem)
		}
		return x.Vararg == nil && y.Vararg == nil
	case VarargType:
		y, ok := b.(VarargType)
		if !ok {
			return false
		}
		return IsSubseteq(x.Elem, y.Elem)
	case TypeVar:
		return IsSubseteq(x.Bound, b) || isEqualTypeVar(x, b)
	case AnyType:
		_, ok := b.(AnyType)
		return ok
	case BottomType:
		return true
	}
	return IsEqual(a, b)
}

func isEqualTypeVar(t TypeVar, b Type) bool {
	if ob, ok := b.(TypeVar); ok {
		return t.Name == ob.Name
	}
	return false
}

// Join computes a ⊔ b.
func Join(a, b Type) Type {
	if IsSubseteq(a, b) {
		return b
	}
	if IsSubseteq(b, a) {
		return a
	}
	return NewUnion(a, b)
}

// Meet computes a ⊓ b, normalizing to Bottom on disjointness.
func Meet(a, b Type) Type {
	if IsSubseteq(a, b) {
		return a
	}
	if IsSubseteq(b, a) {
		return b
	}
	return Bottom()
}

// IsEqual performs structural equality over the type lattice's kinds and
// payloads (cycle-safe: Generic/Union members are compared pairwise rather
// than by reference).
func IsEqual(a, b Type) bool {
	switch x := a.(type) {
	case AnyType:
		_, ok := b.(AnyType)
		return ok
	case BottomType:
		_, ok := b.(BottomType)
		return ok
	case PyClass:
		y, ok := b.(PyClass)
		return ok && x.Name == y.Name
	case Literal:
		y, ok := b.(Literal)
		return ok && isEqualValue(x.Value, y.Value)
	case TypeVar:
		y, ok := b.(TypeVar)
		return ok && x.Name == y.Name
	case VarargType:
		y, ok := b.(VarargType)
		return ok && IsEqual(x.Elem, y.Elem)
	case Hinted:
		y, ok := b.(Hinted)
		return ok && IsEqual(x.Inner, y.Inner)
	case Generic:
		y, ok := b.(Generic)
		if !ok || !IsEqual(x.Body, y.Body) || len(x.Vars) != len(y.Vars) {
			return false
		}
		for i := range x.Vars {
			if !IsEqual(x.Vars[i], y.Vars[i]) {
				return false
			}
		}
		if (x.Vararg == nil) != (y.Vararg == nil) {
			return false
		}
		if x.Vararg != nil {
			return IsEqual(x.Vararg.Elem, y.Vararg.Elem)
		}
		return true
	case Union:
		y, ok := b.(Union)
		if !ok || len(x.Options) != len(y.Options) {
			return false
		}
		used := make([]bool, len(y.Options))
		for _, xo := range x.Options {
			matched := false
			for i, yo := range y.Options {
				if !used[i] && IsEqual(xo, yo) {
					used[i] = true
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}
	return false
}

func isEqualValue(x, y any) bool {
	return x == y
}

func pyClassNameOf(v any) string {
	switch v.(type) {
	case bool:
		return "Bool"
	case int, int64:
		return "Int"
	case float64:
		return "Float"
	case string:
		return "String"
	case nil:
		return "NoneType"
	default:
		return "object"
	}
}
