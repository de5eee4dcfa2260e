package ast

// Visitor is a depth-first traversal over a grammar tree, one method per
// node kind. Implementations that don't care about a particular node kind
// can leave it to an embedded BaseVisitor, whose methods recurse into the
// node's children.
//
// Visitors are pure traversals: any state they need is owned by the
// visitor value itself, not the nodes, so the same Grammar can be walked
// by multiple independent visitors concurrently.
type Visitor interface {
	VisitGrammar(g *Grammar)
	VisitRule(r *Rule)
	VisitExtern(e *ExternDecl)
	VisitRhs(r *Rhs)
	VisitAlt(a *Alt)
	VisitTopLevelItem(t *TopLevelItem)
	VisitItem(it Item)
}

// BaseVisitor implements Visitor with a generic fallthrough traversal for
// every method; embed it and override only the methods a concrete visitor
// cares about.
type BaseVisitor struct {
	Self Visitor
}

func (b *BaseVisitor) self() Visitor {
	if b.Self != nil {
		return b.Self
	}
	return b
}

func (b *BaseVisitor) VisitGrammar(g *Grammar) {
	self := b.self()
	for _, r := range g.Rules {
		self.VisitRule(r)
	}
	for _, e := range g.Externs {
		self.VisitExtern(e)
	}
}

func (b *BaseVisitor) VisitRule(r *Rule) {
	if r.Rhs != nil {
		b.self().VisitRhs(r.Rhs)
	}
}

func (b *BaseVisitor) VisitExtern(e *ExternDecl) {}

func (b *BaseVisitor) VisitRhs(r *Rhs) {
	self := b.self()
	for _, alt := range r.Alts {
		self.VisitAlt(alt)
	}
}

func (b *BaseVisitor) VisitAlt(a *Alt) {
	self := b.self()
	for _, item := range a.Items {
		self.VisitTopLevelItem(item)
	}
}

func (b *BaseVisitor) VisitTopLevelItem(t *TopLevelItem) {
	b.self().VisitItem(t.Item)
}

// VisitItem dispatches on the concrete Item type and recurses into any
// nested item. Leaf kinds (NameLeaf, StringLeaf, Cut) have no children.
func (b *BaseVisitor) VisitItem(it Item) {
	self := b.self()
	switch v := it.(type) {
	case NameLeaf, StringLeaf, Cut:
		// leaves; nothing further to visit
	case Group:
		self.VisitRhs(v.Rhs)
	case Opt:
		self.VisitItem(v.Item)
	case Repeat0:
		self.VisitItem(v.Item)
	case Repeat1:
		self.VisitItem(v.Item)
	case Gather:
		self.VisitItem(v.Separator)
		self.VisitItem(v.Node)
	case PositiveLookahead:
		self.VisitItem(v.Item)
	case NegativeLookahead:
		self.VisitItem(v.Item)
	case Forced:
		self.VisitItem(v.Item)
	}
}

// Walk runs v over g, starting from VisitGrammar.
func Walk(v Visitor, g *Grammar) {
	v.VisitGrammar(g)
}

// nameCollector is a BaseVisitor that records whether the current rule's
// body mentions a particular NameLeaf, used by FindByName below.
type nameCollector struct {
	BaseVisitor
	target string
	found  bool
}

func (nc *nameCollector) VisitItem(it Item) {
	if nl, ok := it.(NameLeaf); ok && nl.Name == nc.target {
		nc.found = true
	}
	nc.BaseVisitor.VisitItem(it)
}

// FindByName returns the names of every rule whose body mentions a
// NameLeaf equal to target, in declaration order. This is the plain,
// non-strict search used by the generator's diagnostic tooling; see
// DESIGN.md for why no "strict" mode is implemented.
func FindByName(g *Grammar, target string) []string {
	var hits []string
	for _, r := range g.Rules {
		nc := &nameCollector{target: target}
		nc.Self = nc
		nc.VisitRule(r)
		if nc.found {
			hits = append(hits, r.Name)
		}
	}
	return hits
}
