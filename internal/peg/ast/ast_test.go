package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_LookupRule(t *testing.T) {
	assert := assert.New(t)

	g := &Grammar{
		Rules: []*Rule{
			{Name: "start", Rhs: &Rhs{}},
			{Name: "expr", Rhs: &Rhs{}},
		},
	}
	g.Index()

	assert.NotNil(g.LookupRule("start"))
	assert.NotNil(g.LookupRule("expr"))
	assert.Nil(g.LookupRule("nope"))
}

func Test_Rule_IsSynthetic(t *testing.T) {
	testCases := []struct {
		name string
		rule string
		want bool
	}{
		{name: "user rule", rule: "expr", want: false},
		{name: "synthetic loop", rule: "_loop0_1", want: true},
		{name: "synthetic tmp", rule: "_tmp_3", want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Rule{Name: tc.rule}
			assert.Equal(t, tc.want, r.IsSynthetic())
		})
	}
}

func Test_Alt_HasCut(t *testing.T) {
	assert := assert.New(t)

	withCut := &Alt{CutIndex: 1}
	withoutCut := &Alt{CutIndex: -1}

	assert.True(withCut.HasCut())
	assert.False(withoutCut.HasCut())
}

func Test_FindByName_FindsReferencingRules(t *testing.T) {
	assert := assert.New(t)

	// start: expr NEWLINE
	// expr: NUMBER
	g := &Grammar{
		Rules: []*Rule{
			{
				Name: "start",
				Rhs: &Rhs{Alts: []*Alt{{
					Items: []*TopLevelItem{
						{Item: NameLeaf{Name: "expr"}},
						{Item: NameLeaf{Name: "NEWLINE"}},
					},
					CutIndex: -1,
				}}},
			},
			{
				Name: "expr",
				Rhs: &Rhs{Alts: []*Alt{{
					Items:    []*TopLevelItem{{Item: NameLeaf{Name: "NUMBER"}}},
					CutIndex: -1,
				}}},
			},
		},
	}

	assert.Equal([]string{"start"}, FindByName(g, "expr"))
	assert.Equal([]string{"expr"}, FindByName(g, "NUMBER"))
	assert.Nil(FindByName(g, "nonexistent"))
}

func Test_BaseVisitor_VisitsNestedItems(t *testing.T) {
	assert := assert.New(t)

	// rule: (a b)* c
	inner := &Rhs{Alts: []*Alt{{
		Items: []*TopLevelItem{
			{Item: NameLeaf{Name: "a"}},
			{Item: NameLeaf{Name: "b"}},
		},
		CutIndex: -1,
	}}}
	rule := &Rule{
		Name: "r",
		Rhs: &Rhs{Alts: []*Alt{{
			Items: []*TopLevelItem{
				{Item: Repeat0{Item: Group{Rhs: inner}}},
				{Item: NameLeaf{Name: "c"}},
			},
			CutIndex: -1,
		}}},
	}

	var seen []string
	collector := &recordingVisitor{}
	collector.Self = collector
	collector.VisitRule(rule)
	seen = collector.names

	assert.Equal([]string{"a", "b", "c"}, seen)
}

type recordingVisitor struct {
	BaseVisitor
	names []string
}

func (rv *recordingVisitor) VisitItem(it Item) {
	if nl, ok := it.(NameLeaf); ok {
		rv.names = append(rv.names, nl.Name)
	}
	rv.BaseVisitor.VisitItem(it)
}
