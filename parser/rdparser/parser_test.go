// Copyright © 2024 The ELPS authors

package rdparser_test

import (
	"strings"
	"testing"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/lexer"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/rdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFile(t testing.TB, text string) (*ast.File, []diagnostic.Diagnostic) {
	idx := position.NewIndex(text)
	toks, lexErrs := lexer.TokenizeIndex(idx)
	require.Empty(t, lexErrs)
	return rdparser.New(toks, idx).ParseFile()
}

func parseConditions(t testing.TB, text string) ([]*ast.Condition, []diagnostic.Diagnostic) {
	idx := position.NewIndex(text)
	toks, lexErrs := lexer.TokenizeIndex(idx)
	require.Empty(t, lexErrs)
	return rdparser.ParseConditions(toks, idx)
}

func codes(diags []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestParseRule(t *testing.T) {
	f, errs := parseFile(t, `rule "R" when $p : Person(age > 18) then System.out.println($p); end`)
	require.Empty(t, errs)
	require.Len(t, f.Rules, 1)
	r := f.Rules[0]
	assert.Equal(t, "R", r.Name.Name)
	assert.True(t, r.Quoted)
	assert.True(t, r.Terminated)
	require.NotNil(t, r.When)
	require.Len(t, r.When.Conditions, 1)
	c := r.When.Conditions[0]
	assert.Equal(t, "$p", c.Binding.Name)
	assert.Equal(t, "Person", c.FactType.Name)
	assert.Equal(t, "age > 18", c.Constraints)
	require.NotNil(t, r.Then)
	assert.Equal(t, "System.out.println($p);", r.Then.Text)
	require.Len(t, r.Then.Refs, 1)
	assert.Equal(t, "$p", r.Then.Refs[0].Name)
	assert.Equal(t, "1:61-1:63", r.Then.Refs[0].Range.String())
}

func TestParseRule_Attributes(t *testing.T) {
	f, errs := parseFile(t, `rule "R"
    no-loop true
    salience 10
    agenda-group "main"
when
then
end`)
	require.Empty(t, errs)
	require.Len(t, f.Rules, 1)
	attrs := f.Rules[0].Attributes
	require.Len(t, attrs, 3)
	assert.Equal(t, "no-loop", attrs[0].Name.Name)
	assert.Equal(t, "true", attrs[0].Value)
	assert.True(t, attrs[0].Known)
	assert.Equal(t, "2:5-2:12", attrs[0].Name.Range.String())
	assert.Equal(t, "salience", attrs[1].Name.Name)
	assert.Equal(t, "10", attrs[1].Value)
	assert.Equal(t, `"main"`, attrs[2].Value)
}

func TestParseRule_AttributesOneLine(t *testing.T) {
	f, errs := parseFile(t, "rule \"R\" no-loop true salience (10 + 2), colour red\nwhen\nthen\nend")
	require.Empty(t, errs)
	attrs := f.Rules[0].Attributes
	require.Len(t, attrs, 3)
	assert.Equal(t, "true", attrs[0].Value)
	assert.Equal(t, "(10 + 2)", attrs[1].Value)
	assert.Equal(t, "colour", attrs[2].Name.Name)
	assert.False(t, attrs[2].Known)
}

func TestParseRule_NameAndExtends(t *testing.T) {
	f, errs := parseFile(t, "rule my-rule extends \"Base\"\nwhen\nthen\nend")
	require.Empty(t, errs)
	r := f.Rules[0]
	assert.Equal(t, "my-rule", r.Name.Name)
	assert.False(t, r.Quoted)
	require.NotNil(t, r.Extends)
	assert.Equal(t, "Base", r.Extends.Name)
}

func TestParseRule_EndInAction(t *testing.T) {
	f, errs := parseFile(t, "rule \"R\"\nwhen\nthen\n    list.end();\n    int end = 1;\nend\n")
	require.Empty(t, errs)
	r := f.Rules[0]
	assert.True(t, r.Terminated)
	assert.Equal(t, "list.end();\n    int end = 1;", r.Then.Text)
}

func TestParseRule_MissingEnd(t *testing.T) {
	f, errs := parseFile(t, `rule "R" when Person() then foo();`)
	require.Len(t, f.Rules, 1)
	assert.False(t, f.Rules[0].Terminated)
	assert.Equal(t, []string{rdparser.CodeMissingEnd}, codes(errs))
}

func TestParseRule_MissingThen(t *testing.T) {
	_, errs := parseFile(t, "rule \"R\"\nwhen\n    Person()\nend\n")
	assert.Equal(t, []string{rdparser.CodeMissingThen}, codes(errs))
}

func TestParseRule_WhenIsOptional(t *testing.T) {
	f, errs := parseFile(t, "rule \"R\"\nthen\n    foo();\nend\n")
	require.Empty(t, errs)
	assert.Nil(t, f.Rules[0].When)
	assert.Equal(t, "foo();", f.Rules[0].Then.Text)
}

func TestParseDeclarations(t *testing.T) {
	f, errs := parseFile(t, `package com.example.rules;

import com.example.Person;
import function com.example.Util.greet;
import com.example.model.*;
import accumulate com.example.Median median;

global java.util.List results;

function String greet(String name) {
    return "hi " + name;
}

declare Person
    @role(fact)
    name : String
    age : int @key
end

query "adults" (int minAge)
    $p : Person(age >= minAge)
end
`)
	require.Empty(t, errs)
	require.NotNil(t, f.Package)
	assert.Equal(t, "com.example.rules", f.Package.Name.Name)

	require.Len(t, f.Imports, 4)
	assert.Equal(t, "com.example.Person", f.Imports[0].Path.Name)
	assert.Equal(t, "function", f.Imports[1].Form)
	assert.Equal(t, "com.example.Util.greet", f.Imports[1].Path.Name)
	assert.True(t, f.Imports[2].Wildcard)
	assert.Equal(t, "accumulate", f.Imports[3].Form)
	assert.Equal(t, "com.example.Median", f.Imports[3].Path.Name)
	require.NotNil(t, f.Imports[3].Alias)
	assert.Equal(t, "median", f.Imports[3].Alias.Name)

	require.Len(t, f.Globals, 1)
	assert.Equal(t, "java.util.List", f.Globals[0].Type)
	assert.Equal(t, "results", f.Globals[0].Name.Name)

	require.Len(t, f.Functions, 1)
	fn := f.Functions[0]
	assert.Equal(t, "greet", fn.Name.Name)
	assert.Equal(t, "String", fn.ReturnType)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "String", fn.Params[0].Type)
	assert.Equal(t, "name", fn.Params[0].Name.Name)
	assert.Equal(t, `return "hi " + name;`, strings.TrimSpace(fn.Body))

	require.Len(t, f.Declares, 1)
	d := f.Declares[0]
	assert.Equal(t, "Person", d.Name.Name)
	assert.True(t, d.Terminated)
	assert.Equal(t, []string{"@role(fact)"}, d.Annotations)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, "name", d.Fields[0].Name.Name)
	assert.Equal(t, "String", d.Fields[0].Type)
	assert.Equal(t, "int", d.Fields[1].Type)
	assert.Equal(t, []string{"@key"}, d.Fields[1].Annotations)

	require.Len(t, f.Queries, 1)
	q := f.Queries[0]
	assert.Equal(t, "adults", q.Name.Name)
	assert.True(t, q.Terminated)
	require.Len(t, q.Params, 1)
	assert.Equal(t, "int", q.Params[0].Type)
	assert.Equal(t, "minAge", q.Params[0].Name.Name)
	require.Len(t, q.When.Conditions, 1)
	assert.Equal(t, "$p", q.When.Conditions[0].Binding.Name)
}

func TestParseFunction_Unterminated(t *testing.T) {
	f, errs := parseFile(t, "function void f() {\n    if (x) {\n\nrule \"R\" when then end\n")
	assert.Equal(t, []string{rdparser.CodeUnterminatedBlock}, codes(errs))
	assert.Len(t, f.Functions, 1)
	assert.Len(t, f.Rules, 1)
}

func TestParseConditions_Exists(t *testing.T) {
	conds, errs := parseConditions(t, "exists(\n    Person(age > 18)\n)")
	require.Empty(t, errs)
	require.Len(t, conds, 1)
	pat := conds[0].Pattern
	require.NotNil(t, pat)
	assert.Equal(t, ast.PatternExists, pat.Keyword)
	assert.True(t, pat.Complete)
	assert.True(t, pat.HasBody)
	assert.Equal(t, 0, pat.Depth)
	require.Len(t, pat.Conditions, 1)
	assert.Equal(t, "Person", pat.Conditions[0].FactType.Name)
	assert.Len(t, pat.Brackets, 2)
}

func TestParseConditions_UnterminatedNot(t *testing.T) {
	conds, errs := parseConditions(t, "not(\n    Account(balance < 0)\n")
	require.Len(t, errs, 1)
	assert.Equal(t, rdparser.CodeUnterminatedPattern, errs[0].Code)
	assert.Equal(t, diagnostic.SourceParser, errs[0].Source)
	assert.Equal(t, "1:1-1:5", errs[0].Range.String())
	require.Len(t, conds, 1)
	pat := conds[0].Pattern
	require.NotNil(t, pat)
	assert.Equal(t, ast.PatternNot, pat.Keyword)
	assert.False(t, pat.Complete)
	require.Len(t, pat.Conditions, 1)
	assert.Equal(t, "Account", pat.Conditions[0].FactType.Name)
}

func TestParseConditions_NestedUnterminatedReportsOnce(t *testing.T) {
	_, errs := parseConditions(t, "exists(\n  not(\n    forall(\n      Person(age > 1\n")
	require.Len(t, errs, 1)
	assert.Equal(t, rdparser.CodeUnterminatedPattern, errs[0].Code)
	assert.Equal(t, "1:1-1:8", errs[0].Range.String())
}

func TestParseConditions_Accumulate(t *testing.T) {
	conds, errs := parseConditions(t, `$total : Number() from accumulate(
    Order($amount : amount),
    sum($amount)
)`)
	require.Empty(t, errs)
	require.Len(t, conds, 1)
	c := conds[0]
	assert.Equal(t, "$total", c.Binding.Name)
	assert.Equal(t, "Number", c.FactType.Name)
	require.NotNil(t, c.Source)
	assert.Equal(t, ast.PatternAccumulate, c.Source.Keyword)
	assert.True(t, c.Source.Complete)
	require.Len(t, c.Source.Conditions, 1)
	order := c.Source.Conditions[0]
	require.Len(t, order.FieldBindings, 1)
	assert.Equal(t, "$amount", order.FieldBindings[0].Name)
	require.Len(t, c.Source.Refs, 1)
	assert.Equal(t, "$amount", c.Source.Refs[0].Name)
}

func TestParseConditions_AccumulateResultBinding(t *testing.T) {
	conds, errs := parseConditions(t, `accumulate(Order($a : amount); $s : sum($a); $s > 10)`)
	require.Empty(t, errs)
	pat := conds[0].Pattern
	require.NotNil(t, pat)
	require.Len(t, pat.Bindings, 1)
	assert.Equal(t, "$s", pat.Bindings[0].Name)
	assert.Empty(t, pat.Unscoped)
}

func TestParseConditions_EvalIgnoresLiteralBrackets(t *testing.T) {
	conds, errs := parseConditions(t, `eval(")" + "(" != "x")`)
	require.Empty(t, errs)
	pat := conds[0].Pattern
	assert.True(t, pat.Complete)
	assert.Equal(t, `")" + "(" != "x"`, pat.Body)
}

func TestParseConditions_EvalUnscopedBinding(t *testing.T) {
	conds, errs := parseConditions(t, `eval($x : 1)`)
	require.Empty(t, errs)
	pat := conds[0].Pattern
	require.Len(t, pat.Unscoped, 1)
	assert.Equal(t, "$x", pat.Unscoped[0].Name)
}

func TestParseConditions_ParenlessNot(t *testing.T) {
	conds, errs := parseConditions(t, "not Person(age < 0)\nexists Account()")
	require.Empty(t, errs)
	require.Len(t, conds, 2)
	for _, c := range conds {
		require.NotNil(t, c.Pattern)
		assert.True(t, c.Pattern.HasBody)
		assert.True(t, c.Pattern.Complete)
		assert.Len(t, c.Pattern.Conditions, 1)
	}
}

func TestParseConditions_EmptyKeyword(t *testing.T) {
	conds, errs := parseConditions(t, "exists")
	require.Empty(t, errs)
	pat := conds[0].Pattern
	assert.False(t, pat.HasBody)
	assert.True(t, pat.Complete)
}

func TestParseConditions_MismatchedBracket(t *testing.T) {
	conds, errs := parseConditions(t, "exists(Person(age > 3]))")
	require.Empty(t, errs)
	pat := conds[0].Pattern
	mismatched := 0
	for _, b := range pat.Brackets {
		if b.Mismatched {
			mismatched++
		}
	}
	assert.Equal(t, 1, mismatched)
}

func TestParseConditions_GroupsAndConnectives(t *testing.T) {
	conds, errs := parseConditions(t, "($a : A() or $b : B())\nand C(x == $a.x), D()")
	require.Empty(t, errs)
	require.Len(t, conds, 3)
	require.Len(t, conds[0].Nested, 2)
	assert.Equal(t, "or", conds[0].Nested[1].Connective)
	assert.Equal(t, "and", conds[1].Connective)
	assert.Equal(t, "and", conds[2].Connective)
	require.Len(t, conds[1].Refs, 1)
	assert.Equal(t, "$a", conds[1].Refs[0].Name)
}

func TestParseConditions_FieldBindings(t *testing.T) {
	conds, errs := parseConditions(t, "Person($n : name, $a := age, age > $min)")
	require.Empty(t, errs)
	c := conds[0]
	require.Len(t, c.FieldBindings, 2)
	assert.Equal(t, "$n", c.FieldBindings[0].Name)
	assert.False(t, c.FieldBindings[0].Unify)
	assert.True(t, c.FieldBindings[1].Unify)
	require.Len(t, c.Refs, 1)
	assert.Equal(t, "$min", c.Refs[0].Name)
}

func TestParseConditions_From(t *testing.T) {
	conds, errs := parseConditions(t, "$i : Item() from $order.items\n$p : Person()")
	require.Empty(t, errs)
	require.Len(t, conds, 2)
	assert.Equal(t, "$order.items", conds[0].From)
	require.Len(t, conds[0].Refs, 1)
	assert.Equal(t, "$order", conds[0].Refs[0].Name)
}

func TestParseConditions_Depth(t *testing.T) {
	const depth = 200
	text := strings.Repeat("not(", depth) + "Person()" + strings.Repeat(")", depth)
	conds, errs := parseConditions(t, text)
	require.Empty(t, errs)
	pat := conds[0].Pattern
	for i := 0; i < depth-1; i++ {
		assert.Equal(t, i, pat.Depth)
		require.Len(t, pat.Conditions, 1)
		pat = pat.Conditions[0].Pattern
		require.NotNil(t, pat)
	}
	assert.Equal(t, depth-1, pat.Depth)
	assert.True(t, pat.Complete)

	_, errs = parseConditions(t, text[:len(text)-1])
	require.Len(t, errs, 1)
	assert.Equal(t, "1:1-1:5", errs[0].Range.String())
}

func TestParseFile_RecoverCondition(t *testing.T) {
	f, errs := parseFile(t, `rule "A"
when
    $p : Person()
    123 456
    $q : Account()
then
end
`)
	require.Len(t, errs, 1)
	assert.Equal(t, rdparser.CodeUnexpectedToken, errs[0].Code)
	assert.Equal(t, "4:5-4:12", errs[0].Range.String())
	assert.Len(t, f.Rules[0].When.Conditions, 2)
}

func TestParseFile_RecoverTopLevel(t *testing.T) {
	f, errs := parseFile(t, "garbage tokens here\nrule \"A\" when then end\n")
	require.Len(t, errs, 1)
	assert.Equal(t, rdparser.CodeUnexpectedToken, errs[0].Code)
	assert.Equal(t, "1:1-1:20", errs[0].Range.String())
	assert.Len(t, f.Rules, 1)
}

func TestParseFile_RangesNest(t *testing.T) {
	f, _ := parseFile(t, sampleDocument)
	var check func(n ast.Node)
	check = func(n ast.Node) {
		for _, c := range n.Children() {
			assert.True(t, n.Span().ContainsRange(c.Span()),
				"%s %s does not contain %s %s", n.Kind(), n.Span(), c.Kind(), c.Span())
			check(c)
		}
	}
	check(f)
}

func TestParseFile_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"(",
		")",
		"rule",
		"rule \"x\" when",
		"rule \"x\" when not(",
		"rule \"x\" when $a :",
		"rule \"x\" when then end end end",
		"declare",
		"function",
		"function int f(",
		"query",
		"import",
		"package;",
		"}}}))]]",
		"rule \"x\" when accumulate(Order(), ; ) then end",
		"rule \"x\" when Person() from then end",
		sampleDocument[:len(sampleDocument)/2],
	}
	for _, text := range inputs {
		assert.NotPanics(t, func() {
			idx := position.NewIndex(text)
			toks, _ := lexer.TokenizeIndex(idx)
			rdparser.New(toks, idx).ParseFile()
		}, "%q", text)
	}
}

const sampleDocument = `package com.example;

import com.example.Person;

global java.util.List audit;

function int twice(int x) {
    return x * 2;
}

declare Order
    amount : double
end

query "rich" (double min)
    $p : Person(wealth > min)
end

rule "Adults"
    salience 10
    no-loop true
when
    $p : Person(age > 18, $n : name)
    not(
        exists(
            Account(owner == $p)
        )
    )
    $total : Number(doubleValue > 100) from accumulate(
        Order($a : amount),
        sum($a)
    )
    eval($total != null)
then
    audit.add($n);
    modify($p) { setAdult(true) };
end
`

func BenchmarkParseFile(b *testing.B) {
	text := strings.Repeat(sampleDocument[strings.Index(sampleDocument, "rule"):], 200)
	idx := position.NewIndex(text)
	toks, _ := lexer.TokenizeIndex(idx)
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rdparser.New(toks, idx).ParseFile()
	}
}
