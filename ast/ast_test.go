// Copyright © 2024 The ELPS authors

package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type kindCounter map[NodeKind]int

func (k kindCounter) VisitFile(*File)                         { k[KindFile]++ }
func (k kindCounter) VisitPackage(*Package)                   { k[KindPackage]++ }
func (k kindCounter) VisitImport(*Import)                     { k[KindImport]++ }
func (k kindCounter) VisitGlobal(*Global)                     { k[KindGlobal]++ }
func (k kindCounter) VisitFunction(*Function)                 { k[KindFunction]++ }
func (k kindCounter) VisitParameter(*Parameter)               { k[KindParameter]++ }
func (k kindCounter) VisitRule(*Rule)                         { k[KindRule]++ }
func (k kindCounter) VisitAttribute(*Attribute)               { k[KindAttribute]++ }
func (k kindCounter) VisitWhen(*When)                         { k[KindWhen]++ }
func (k kindCounter) VisitThen(*Then)                         { k[KindThen]++ }
func (k kindCounter) VisitCondition(*Condition)               { k[KindCondition]++ }
func (k kindCounter) VisitMultiLinePattern(*MultiLinePattern) { k[KindMultiLinePattern]++ }
func (k kindCounter) VisitQuery(*Query)                       { k[KindQuery]++ }
func (k kindCounter) VisitDeclare(*Declare)                   { k[KindDeclare]++ }
func (k kindCounter) VisitDeclareField(*DeclareField)         { k[KindDeclareField]++ }

func sampleFile() *File {
	inner := &MultiLinePattern{Keyword: PatternExists, Complete: true}
	outer := &MultiLinePattern{
		Keyword: PatternNot,
		Conditions: []*Condition{
			{Nested: []*Condition{{Pattern: inner}}},
			{FactType: &Ident{Name: "Person"}},
		},
	}
	return &File{
		Rules: []*Rule{{
			Name:       &Ident{Name: "R"},
			Attributes: []*Attribute{{Name: &Ident{Name: "no-loop"}, Known: true}},
			When:       &When{Conditions: []*Condition{{Pattern: outer}}},
			Then:       &Then{},
		}},
	}
}

func TestInspectAndAccept(t *testing.T) {
	counts := kindCounter{}
	Inspect(sampleFile(), func(n Node) bool {
		n.Accept(counts)
		return true
	})
	assert.Equal(t, kindCounter{
		KindFile:             1,
		KindRule:             1,
		KindAttribute:        1,
		KindWhen:             1,
		KindThen:             1,
		KindCondition:        4,
		KindMultiLinePattern: 2,
	}, counts)
}

func TestInspect_SkipChildren(t *testing.T) {
	n := 0
	Inspect(sampleFile(), func(node Node) bool {
		n++
		return node.Kind() != KindRule
	})
	assert.Equal(t, 2, n)
}

func TestNestedPatterns(t *testing.T) {
	f := sampleFile()
	outer := f.Rules[0].When.Conditions[0].Pattern
	nested := outer.NestedPatterns()
	if assert.Len(t, nested, 1) {
		assert.Equal(t, PatternExists, nested[0].Keyword)
	}
}

func TestNodeKindString(t *testing.T) {
	seen := map[string]bool{}
	for k := NodeKind(0); k < numKinds; k++ {
		s := k.String()
		assert.NotEqual(t, "unknown", s)
		assert.False(t, seen[s], s)
		seen[s] = true
	}
	assert.True(t, IsPatternType("accumulate"))
	assert.False(t, IsPatternType("from"))
}

func TestDeclarationForm(t *testing.T) {
	imp := &Import{Form: "function", Path: &Ident{Name: "com.acme.Util.max"}}
	decl := &Declare{Form: "enum", Name: &Ident{Name: "Color"}}
	nodes := []Node{imp, decl}
	assert.Equal(t, KindImport, nodes[0].Kind())
	assert.Equal(t, KindDeclare, nodes[1].Kind())

	b, err := json.Marshal(imp)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"function"`)

	y, err := yaml.Marshal(decl)
	require.NoError(t, err)
	assert.Contains(t, string(y), "kind: enum")
}
