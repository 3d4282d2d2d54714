package types

// Subst maps type-variable names to their resolved types. It plays the role
// funxy's typesystem.Subst plays for its Hindley-Milner unifier, but here it
// only ever narrows TypeVar occurrences — it never solves a variable to
// another variable chain that could cycle through itself, so a
// cycle-visited set (as funxy's ApplyWithCycleCheck needs) still guards
// against a TypeVar whose Bound transitively mentions itself.
type Subst map[string]Type

// Apply substitutes every TypeVar in t that Subst resolves, leaving
// unresolved variables (and their declared Bound) untouched.
func Apply(t Type, s Subst) Type {
	return applyCycleSafe(t, s, make(map[string]bool))
}

func applyCycleSafe(t Type, s Subst, visited map[string]bool) Type {
	switch x := t.(type) {
	case TypeVar:
		if visited[x.Name] {
			return x
		}
		if repl, ok := s[x.Name]; ok {
			if rv, ok := repl.(TypeVar); ok && rv.Name == x.Name {
				return x
			}
			nv := copyVisited(visited)
			nv[x.Name] = true
			return applyCycleSafe(repl, s, nv)
		}
		return TypeVar{Name: x.Name, Bound: applyCycleSafe(x.Bound, s, visited)}
	case Generic:
		newVars := make([]Type, len(x.Vars))
		for i, v := range x.Vars {
			newVars[i] = applyCycleSafe(v, s, visited)
		}
		var newVararg *VarargType
		if x.Vararg != nil {
			ve := applyCycleSafe(x.Vararg.Elem, s, visited)
			newVararg = &VarargType{Elem: ve}
		}
		return Generic{Body: applyCycleSafe(x.Body, s, visited), Vars: newVars, Vararg: newVararg}
	case VarargType:
		return VarargType{Elem: applyCycleSafe(x.Elem, s, visited)}
	case Union:
		newOpts := make([]Type, len(x.Options))
		for i, o := range x.Options {
			newOpts[i] = applyCycleSafe(o, s, visited)
		}
		return NewUnion(newOpts...)
	case Hinted:
		return Hinted{Data: x.Data, Inner: applyCycleSafe(x.Inner, s, visited)}
	default:
		return t
	}
}

func copyVisited(v map[string]bool) map[string]bool {
	nv := make(map[string]bool, len(v)+1)
	for k, val := range v {
		nv[k] = val
	}
	return nv
}

// Resolve narrows a Generic's type variables given the observed argument
// types, producing a Subst a caller can Apply to the Generic's body. Each
// declared variable is matched positionally against the corresponding
// argument type (Vararg, if present, absorbs any trailing arguments as a
// Union so repeated calls with differing tail types still narrow safely).
func Resolve(vars []Type, vararg *VarargType, args []Type) Subst {
	s := make(Subst)
	n := len(vars)
	for i := 0; i < n && i < len(args); i++ {
		tv, ok := vars[i].(TypeVar)
		if !ok {
			continue
		}
		if existing, ok := s[tv.Name]; ok {
			s[tv.Name] = Join(existing, args[i])
		} else {
			s[tv.Name] = args[i]
		}
	}
	if vararg != nil {
		tv, ok := vararg.Elem.(TypeVar)
		if ok && len(args) > n {
			acc := Bottom()
			for _, a := range args[n:] {
				acc = Join(acc, a)
			}
			if existing, ok := s[tv.Name]; ok {
				s[tv.Name] = Join(existing, acc)
			} else {
				s[tv.Name] = acc
			}
		}
	}
	return s
}
