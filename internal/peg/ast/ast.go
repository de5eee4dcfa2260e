// Package ast defines the immutable grammar tree produced by the
// meta-grammar parser, plus the per-rule mutable analysis flags written by
// the Analyzer. All grammar data is created by the meta-grammar parser,
// mutated only by the Analyzer and Desugarer, then frozen before code
// emission runs.
package ast

import "fmt"

// ReservedPrefix marks names synthesised by the Desugarer. User rule and
// binding names must not begin with it.
const ReservedPrefix = "_"

// Grammar is a collection of named Rules, named ExternDecls, and a
// key/value mapping of grammar-level meta directives.
//
// Invariant: names across Rules and Externs are unique, and at least one
// rule exists; the first declared rule is the start rule (see StartRule).
type Grammar struct {
	Rules   []*Rule
	Externs []*ExternDecl
	Metas   Metas

	// ruleIndex and externIndex are populated by Index and used for O(1)
	// name lookups during analysis and emission.
	ruleIndex   map[string]*Rule
	externIndex map[string]*ExternDecl
}

// Metas holds the grammar-level directives:
// @class, @base, @header, @metaheader, @trailer, @location_format.
type Metas struct {
	Class          string
	Base           string
	Header         string
	MetaHeader     string
	Trailer        string
	LocationFormat string
}

// DefaultLocationFormat is used when no @location_format meta is given.
const DefaultLocationFormat = "(start, end)"

// LocationFormatOrDefault returns the configured @location_format expression,
// or DefaultLocationFormat if none was given.
func (m Metas) LocationFormatOrDefault() string {
	if m.LocationFormat == "" {
		return DefaultLocationFormat
	}
	return m.LocationFormat
}

// Rule is a named production: a left-hand side name, an optional
// return-type annotation, a right-hand side, a memoize flag, and the
// analysis flags mutated only by the Analyzer.
type Rule struct {
	Name      string
	Type      string // optional return-type annotation; empty if absent
	Rhs       *Rhs
	Memoize   bool

	// Analysis flags, mutated only by the Analyzer.
	Nullable      bool
	LeftRecursive bool
	Leader        bool
}

// IsSynthetic reports whether this rule was synthesised by the Desugarer
// (its name begins with ReservedPrefix).
func (r *Rule) IsSynthetic() bool {
	return len(r.Name) > 0 && r.Name[:1] == ReservedPrefix
}

// ExternDecl references a method the generated parser's base type must
// provide. It is treated as a possibly-nullable terminal during analysis.
type ExternDecl struct {
	Name string
	Type string // optional type annotation; empty if absent
}

// Rhs is an ordered sequence of Alts with PEG prioritised-choice semantics:
// earlier alternatives win.
type Rhs struct {
	Alts []*Alt
}

// Alt is an ordered sequence of TopLevelItems with an optional opaque
// semantic action and an optional cut index: the index into Items of the
// first Cut item, or -1 if the alternative has no cut.
type Alt struct {
	Items    []*TopLevelItem
	Action   string // opaque; empty if the default return is used
	CutIndex int    // -1 if no Cut item is present
}

// HasCut reports whether this alternative contains a Cut ("~") item.
func (a *Alt) HasCut() bool {
	return a.CutIndex >= 0
}

// TopLevelItem is an Item with an optional binding name and optional type
// annotation. Binding names must not begin with ReservedPrefix.
type TopLevelItem struct {
	Name string // binding name; empty if the item result is unbound
	Item Item
	Type string // optional type annotation; empty if absent
}

// Item is the tagged variant for every grammar element below the top level.
// Concrete types: NameLeaf, StringLeaf, Group, Opt, Repeat0, Repeat1,
// Gather, PositiveLookahead, NegativeLookahead, Forced, Cut.
type Item interface {
	fmt.Stringer
	isItem()
}

// NameLeaf references another rule, extern, or well-known terminal by name.
type NameLeaf struct {
	Name string
}

func (NameLeaf) isItem() {}
func (n NameLeaf) String() string { return n.Name }

// StringLeaf is a quoted literal, stored without its surrounding quotes
// (escape sequences already resolved by the meta-grammar parser).
type StringLeaf struct {
	Value string

	// Quote is the quote character originally used ('\'' or '"'), kept so
	// emission can round-trip the literal faithfully.
	Quote byte
}

func (StringLeaf) isItem() {}
func (s StringLeaf) String() string { return string(s.Quote) + s.Value + string(s.Quote) }

// Group is a parenthesised sub-sequence: `( rhs )`.
type Group struct {
	Rhs *Rhs
}

func (Group) isItem() {}
func (g Group) String() string { return "(" + g.Rhs.String() + ")" }

// Opt is `atom ?` or `[ rhs ]`. It is kept inline by the Desugarer; it never
// spawns a synthetic rule.
type Opt struct {
	Item Item
}

func (Opt) isItem() {}
func (o Opt) String() string { return o.Item.String() + "?" }

// Repeat0 is `atom *`: zero or more repetitions.
type Repeat0 struct {
	Item Item
}

func (Repeat0) isItem() {}
func (r Repeat0) String() string { return r.Item.String() + "*" }

// Repeat1 is `atom +`: one or more repetitions.
type Repeat1 struct {
	Item Item
}

func (Repeat1) isItem() {}
func (r Repeat1) String() string { return r.Item.String() + "+" }

// Gather is `atom . atom +`: one or more repetitions of the second atom
// separated by the first.
type Gather struct {
	Separator Item
	Node      Item
}

func (Gather) isItem() {}
func (g Gather) String() string { return g.Separator.String() + "." + g.Node.String() + "+" }

// PositiveLookahead is `& atom`: succeeds iff the body succeeds, always
// restoring position; never binds a value.
type PositiveLookahead struct {
	Item Item
}

func (PositiveLookahead) isItem() {}
func (p PositiveLookahead) String() string { return "&" + p.Item.String() }

// NegativeLookahead is `! atom`: succeeds iff the body fails, always
// restoring position.
type NegativeLookahead struct {
	Item Item
}

func (NegativeLookahead) isItem() {}
func (n NegativeLookahead) String() string { return "!" + n.Item.String() }

// Forced is `&& atom`: must match; failure raises a syntax error describing
// the expectation rather than backtracking.
type Forced struct {
	Item Item
}

func (Forced) isItem() {}
func (f Forced) String() string { return "&&" + f.Item.String() }

// Cut is `~`: commits the parser to the current alternative.
type Cut struct{}

func (Cut) isItem() {}
func (Cut) String() string { return "~" }

// String renders an Rhs back into roughly its source form, used for
// diagnostics and the subrule-shadowing validator.
func (r *Rhs) String() string {
	s := ""
	for i, alt := range r.Alts {
		if i > 0 {
			s += " | "
		}
		s += alt.String()
	}
	return s
}

// String renders an Alt back into roughly its source form.
func (a *Alt) String() string {
	s := ""
	for i, it := range a.Items {
		if i > 0 {
			s += " "
		}
		s += it.String()
	}
	return s
}

// String renders a TopLevelItem back into roughly its source form.
func (t *TopLevelItem) String() string {
	if t.Name != "" {
		return t.Name + "=" + t.Item.String()
	}
	return t.Item.String()
}
