// Copyright © 2024 The ELPS authors

package analysis

import (
	"sort"
	"strings"
)

// Builtins are the context variables available in every rule action
// without a declaration.  They may be written with or without the $ sigil.
var Builtins = map[string]string{
	"drools":   "The KnowledgeHelper of the firing rule: insert, update, delete, halt.",
	"kcontext": "The RuleContext of the firing rule, giving access to the session and the rule.",
}

// BuiltinNames returns the builtin names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// populateBuiltins adds the builtin context variables to the given scope.
func populateBuiltins(scope *Scope, extra []string) {
	for name, doc := range Builtins {
		scope.Define(&Symbol{
			Name:      name,
			Kind:      SymBuiltin,
			DocString: doc,
		})
	}
	for _, name := range extra {
		name = strings.TrimPrefix(name, "$")
		if scope.LookupLocal(name) == nil {
			scope.Define(&Symbol{Name: name, Kind: SymBuiltin})
		}
	}
}

// lookupBuiltin returns the builtin a variable name refers to, or nil.
func lookupBuiltin(scope *Scope, name string) *Symbol {
	sym := scope.Lookup(strings.TrimPrefix(name, "$"))
	if sym != nil && sym.Kind == SymBuiltin {
		return sym
	}
	return nil
}
