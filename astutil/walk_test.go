// Copyright © 2024 The ELPS authors

package astutil

import (
	"testing"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `rule "A"
    salience 5
    salience 7
when
    $p : Person()
    not(
        exists(Account(owner == $p))
    )
    $n : Number() from accumulate(Order($x : amount), sum($x))
then
    update($p);
end
`

func parse(t *testing.T) *ast.File {
	res := parser.Parse("walk.drl", source)
	require.Empty(t, res.Errors)
	return res.File
}

func TestWalk_Depth(t *testing.T) {
	f := parse(t)
	kinds := map[ast.NodeKind]int{}
	maxDepth := 0
	Walk(f, func(node, parent ast.Node, depth int) {
		kinds[node.Kind()]++
		if depth > maxDepth {
			maxDepth = depth
		}
		if node == f {
			assert.Nil(t, parent)
		} else {
			assert.NotNil(t, parent)
		}
	})
	assert.Equal(t, 1, kinds[ast.KindRule])
	assert.Equal(t, 3, kinds[ast.KindMultiLinePattern])
	assert.Equal(t, 2, kinds[ast.KindAttribute])
	// file > rule > when > condition > pattern > condition > pattern > condition
	assert.Equal(t, 7, maxDepth)
}

func TestWalkConditions(t *testing.T) {
	f := parse(t)
	var types []string
	var enclosing []string
	WalkConditions(RuleConditions(f.Rules[0]), func(c *ast.Condition, pat *ast.MultiLinePattern) {
		types = append(types, c.FactType.String())
		if pat == nil {
			enclosing = append(enclosing, "")
		} else {
			enclosing = append(enclosing, string(pat.Keyword))
		}
	})
	assert.Equal(t, []string{"Person", "", "", "Account", "Number", "Order"}, types)
	assert.Equal(t, []string{"", "", "not", "exists", "", "accumulate"}, enclosing)
}

func TestPatterns(t *testing.T) {
	pats := Patterns(parse(t))
	require.Len(t, pats, 3)
	assert.Equal(t, ast.PatternNot, pats[0].Keyword)
	assert.Equal(t, ast.PatternExists, pats[1].Keyword)
	assert.Equal(t, ast.PatternAccumulate, pats[2].Keyword)
}

func TestAttributeValue(t *testing.T) {
	r := parse(t).Rules[0]
	v, ok := AttributeValue(r, "salience")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
	_, ok = AttributeValue(r, "no-loop")
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	f := parse(t)
	idx := NewIndex(f)
	r := f.Rules[0]

	// inside "Account"
	pos := position.Position{Line: 6, Column: 20}
	node := idx.NodeAt(pos)
	require.NotNil(t, node)
	cond, ok := node.(*ast.Condition)
	require.True(t, ok, "got %s", node.Kind())
	assert.Equal(t, "Account", cond.FactType.Name)
	assert.Same(t, r, idx.EnclosingRule(pos))
	pat := idx.EnclosingPattern(pos)
	require.NotNil(t, pat)
	assert.Equal(t, ast.PatternExists, pat.Keyword)

	parent := idx.Parent(cond)
	assert.Same(t, pat, parent)
	assert.Nil(t, idx.Parent(f))

	path := idx.Path(pos)
	require.NotEmpty(t, path)
	assert.Equal(t, ast.KindFile, path[0].Kind())
	assert.Equal(t, ast.KindRule, path[1].Kind())

	assert.Nil(t, idx.EnclosingRule(position.Position{Line: 100}))
}
