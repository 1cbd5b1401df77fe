package analysis

import (
	"github.com/rlch/dcl/schema"
)

// unify binds the type variables of pattern by structural matching against
// actual. Variables that are already bound keep their binding.
func unify(pattern, actual schema.TypeRef, subst map[string]schema.TypeRef) {
	if actual.IsZero() || actual.Var {
		return
	}

	if pattern.Var {
		if _, ok := subst[pattern.Name]; !ok {
			subst[pattern.Name] = actual
		}

		return
	}

	if pattern.Name != actual.Name || len(pattern.Args) != len(actual.Args) {
		return
	}

	for i := range pattern.Args {
		unify(pattern.Args[i], actual.Args[i], subst)
	}
}

// bound applies subst and replaces the variables left unbound with Any.
func bound(t schema.TypeRef, subst map[string]schema.TypeRef) schema.TypeRef {
	t = t.Substitute(subst)
	if !t.HasVars() {
		return t
	}

	return eraseVars(t)
}

func eraseVars(t schema.TypeRef) schema.TypeRef {
	if t.Var {
		return schema.Any
	}

	args := make([]schema.TypeRef, len(t.Args))
	for i, a := range t.Args {
		args[i] = eraseVars(a)
	}

	return schema.TypeRef{Name: t.Name, Args: args}
}
