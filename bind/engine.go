// Package bind runs the two phase binding engine: collection of every
// translation unit into one symbol table, then per-declaration synthesis
// followed by per-scope grouping.
package bind

import (
	"context"
	"runtime"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ardanlabs/hostbind/adapter"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/diag"
	"github.com/ardanlabs/hostbind/filter"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/overload"
	"github.com/ardanlabs/hostbind/policy"
)

// Engine binds declaration forests under one policy. It is safe for
// concurrent use; every Run starts from scratch.
type Engine struct {
	p       *policy.Policy
	workers int
	log     *zap.SugaredLogger
}

type Option func(*Engine)

// WithWorkers bounds the number of declarations synthesized concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func New(p *policy.Policy, opts ...Option) *Engine {
	e := Engine{
		p:       p,
		workers: runtime.GOMAXPROCS(0),
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&e)
	}

	return &e
}

// Run binds units. It fails only on malformed input or cancellation;
// declarations that cannot be published are reported in the result's
// diagnostics.
func (e *Engine) Run(ctx context.Context, units []decl.Unit) (*Result, error) {
	symbols, forest, err := e.collect(ctx, units)
	if err != nil {
		return nil, err
	}

	cfg := e.p.Config()
	resolver := naming.NewResolver(naming.Namespaces(forest), naming.Options{
		SnakeCase:       cfg.SnakeCase,
		EnumStripPrefix: cfg.EnumStripPrefix,
		RootNamespaces:  cfg.RootNamespaces,
	})

	r := run{
		e:        e,
		filter:   filter.New(e.p),
		expander: overload.NewExpander(e.p),
		synth:    adapter.New(e.p, resolver),
		resolver: resolver,
		symbols:  symbols,
		diags:    diag.NewCollector(),
	}
	r.stats.Units = len(units)
	r.stats.Symbols = symbols.Len()

	root := &Scope{Kind: ScopeModule}
	r.scopes = append(r.scopes, root)
	r.build(root, forest, nil)

	out, err := r.synthesize(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.finish(ctx, out); err != nil {
		return nil, err
	}

	res := Result{
		Root:        root,
		BoxedTypes:  r.boxedTypes(),
		Diagnostics: r.diags.Sorted(),
	}
	res.Stats = r.stats
	res.Stats.Diagnostics = len(res.Diagnostics)
	res.Walk(func(s *Scope) {
		res.Stats.Groups += len(s.Groups)
		for _, g := range s.Groups {
			res.Stats.Plans += len(g.Plans)
		}
	})

	e.log.Infow("binding complete",
		"units", res.Stats.Units,
		"symbols", res.Stats.Symbols,
		"plans", res.Stats.Plans,
		"groups", res.Stats.Groups,
		"excluded", res.Stats.Excluded,
		"diagnostics", res.Stats.Diagnostics,
	)

	return &res, nil
}

// collect is phase 1. Every unit is validated and indexed by its own
// goroutine into its own slot; slots are merged in input order.
func (e *Engine) collect(ctx context.Context, units []decl.Unit) (*Symbols, []decl.Node, error) {
	names := make([][]string, len(units))
	nodes := make([][]decl.Node, len(units))

	g, gCtx := errgroup.WithContext(ctx)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if err := validate(u); err != nil {
				return err
			}
			names[i], nodes[i] = collect(u)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	forests := make([][]decl.Node, len(units))
	for i, u := range units {
		forests[i] = u.Decls
	}

	e.log.Debugw("collection complete", "units", len(units))

	return newSymbols(names, nodes), naming.MergeNamespaces(forests...), nil
}

type job struct {
	fn    *decl.Function
	field *decl.Field
	owner *decl.Class
}

type outcome struct {
	plan  adapter.Plan
	field adapter.FieldPlan
	keep  bool
	err   error
}

// entry is a source ordered slot of a scope. Functions and fields refer to
// synthesis jobs; a template function owns one job per instance.
type entry struct {
	kind ItemKind
	name string
	jobs []int
}

type run struct {
	e        *Engine
	filter   *filter.Filter
	expander *overload.Expander
	synth    *adapter.Synthesizer
	resolver *naming.Resolver
	symbols  *Symbols
	diags    *diag.Collector

	jobs   []job
	scopes []*Scope
	stats  Stats
}

// build lays out the scope tree and queues synthesis jobs. It runs on one
// goroutine and is cheap; the expensive work is queued.
func (r *run) build(scope *Scope, nodes []decl.Node, parents []decl.Node) {
	for _, n := range nodes {
		if !r.filter.Select(n, parents...) {
			r.stats.Excluded++
			r.e.log.Debugw("declaration excluded", "decl", n.Common().Qualified, "kind", n.Kind().String())
			continue
		}

		inner := append(parents[:len(parents):len(parents)], n)

		switch v := n.(type) {
		case *decl.Namespace:
			if r.e.p.IsRootNamespace(v.Name) {
				if scope.Doc == "" {
					scope.Doc = v.Doc
				}
				r.build(scope, v.Children, inner)
				continue
			}
			r.build(r.module(scope, v), v.Children, inner)

		case *decl.Class:
			insts, ok := r.expander.Class(v)
			if !ok {
				r.diags.Add(v.Span, diag.Warning, v.Qualified, "class template without instantiation")
				continue
			}
			if len(v.TemplateParams) > 0 {
				r.stats.Instantiated += len(insts)
			}
			for _, c := range insts {
				cp := r.synth.Class(c)
				child := r.newScope(ScopeClass, r.resolver.Resolve(c.Qualified, decl.KindClass), c.Doc)
				child.Class = &cp
				scope.Scopes = append(scope.Scopes, child)
				scope.entries = append(scope.entries, entry{kind: ItemClass, name: child.Name})
				r.build(child, c.Children, append(parents[:len(parents):len(parents)], c))
			}

		case *decl.Enum:
			en := r.enum(v, parents)
			scope.Enums = append(scope.Enums, en)
			scope.entries = append(scope.entries, entry{kind: ItemEnum, name: en.Name})

		case *decl.Function:
			owner := ownerOf(parents)
			fns := r.expander.Function(v)
			if v.Generic() && (len(fns) > 1 || !fns[0].Generic()) {
				r.stats.Instantiated += len(fns)
			}

			en := entry{kind: ItemFunction}
			for _, fn := range fns {
				en.jobs = append(en.jobs, r.queue(job{fn: fn, owner: owner}))
			}
			scope.entries = append(scope.entries, en)

		case *decl.Field:
			scope.entries = append(scope.entries, entry{
				kind: ItemField,
				jobs: []int{r.queue(job{field: v, owner: ownerOf(parents)})},
			})
		}
	}
}

// module returns the child module of scope for ns, creating it on first
// use. Flattened roots can make two namespaces land on one module.
func (r *run) module(scope *Scope, ns *decl.Namespace) *Scope {
	path := r.resolver.Resolve(ns.Qualified, decl.KindNamespace)

	for _, c := range scope.Scopes {
		if c.Kind == ScopeModule && c.Name == path.Name {
			if c.Doc == "" {
				c.Doc = ns.Doc
			}
			return c
		}
	}

	child := r.newScope(ScopeModule, path, ns.Doc)
	scope.Scopes = append(scope.Scopes, child)
	scope.entries = append(scope.entries, entry{kind: ItemModule, name: child.Name})

	return child
}

func (r *run) newScope(kind ScopeKind, path naming.HostPath, doc string) *Scope {
	s := Scope{Kind: kind, Name: path.Name, Path: path, Doc: doc}
	r.scopes = append(r.scopes, &s)

	return &s
}

func (r *run) queue(j job) int {
	r.jobs = append(r.jobs, j)
	return len(r.jobs) - 1
}

func (r *run) enum(v *decl.Enum, parents []decl.Node) Enum {
	en := Enum{
		Name:    r.resolver.Resolve(v.Qualified, decl.KindEnum).Name,
		CppName: v.Qualified,
		Doc:     v.Doc,
		IsClass: v.IsClass,
	}

	inner := append(parents[:len(parents):len(parents)], v)
	for _, ev := range v.Values {
		if !r.filter.Select(ev, inner...) {
			r.stats.Excluded++
			continue
		}
		en.Values = append(en.Values, EnumValue{
			Name:    r.resolver.EnumValueName(v.Name, ev.Name),
			CppName: ev.Qualified,
			Value:   ev.Value,
			Doc:     ev.Doc,
		})
	}

	return en
}

func ownerOf(parents []decl.Node) *decl.Class {
	if len(parents) == 0 {
		return nil
	}
	c, _ := parents[len(parents)-1].(*decl.Class)

	return c
}

// synthesize is phase 2. Each job writes only its own slot, so the result
// does not depend on scheduling.
func (r *run) synthesize(ctx context.Context) ([]outcome, error) {
	out := make([]outcome, len(r.jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.e.workers)

	for i, j := range r.jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out[i] = r.synthesizeOne(j)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "synthesis")
	}

	return out, nil
}

func (r *run) synthesizeOne(j job) outcome {
	if j.field != nil {
		fp, keep, err := r.synth.Field(r.symbols.qualifyField(j.field), j.owner)
		fp.Decl = j.field

		return outcome{field: fp, keep: keep, err: err}
	}

	plan, err := r.synth.Function(r.symbols.qualifyFunction(j.fn), j.owner)
	plan.Decl = j.fn

	return outcome{plan: plan, keep: err == nil, err: err}
}

// finish groups every scope once all of its members are synthesized.
// Scopes are independent of each other and are finished concurrently.
func (r *run) finish(ctx context.Context, out []outcome) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.e.workers)

	for _, s := range r.scopes {
		s := s
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r.finishScope(s, out)

			return nil
		})
	}

	return g.Wait()
}

func (r *run) finishScope(s *Scope, out []outcome) {
	var plans []adapter.Plan

	for _, en := range s.entries {
		for _, ji := range en.jobs {
			o := out[ji]
			if o.err != nil {
				r.report(o.err)
				continue
			}

			switch en.kind {
			case ItemFunction:
				plans = append(plans, o.plan)
			case ItemField:
				if o.keep {
					s.Fields = append(s.Fields, o.field)
				}
			}
		}
	}

	dropped := make(map[string]bool)
	for _, g := range overload.Groups(s.Path.String(), plans) {
		if c, bad := g.Check(); bad {
			first := g.Plans[c.First].Decl
			r.diags.Add(first.Span, diag.Error, first.Qualified, c.Error())
			dropped[g.Name] = true
			continue
		}
		s.Groups = append(s.Groups, g)
	}

	seen := make(map[string]bool)
	for _, en := range s.entries {
		switch en.kind {
		case ItemFunction:
			for _, ji := range en.jobs {
				name := out[ji].plan.Name
				if out[ji].err != nil || dropped[name] || seen[name] {
					continue
				}
				seen[name] = true
				s.Items = append(s.Items, Item{Kind: ItemFunction, Name: name})
			}

		case ItemField:
			o := out[en.jobs[0]]
			if o.err == nil && o.keep {
				s.Items = append(s.Items, Item{Kind: ItemField, Name: o.field.Name})
			}

		default:
			s.Items = append(s.Items, Item{Kind: en.kind, Name: en.name})
		}
	}
}

func (r *run) report(err error) {
	var ue *adapter.UnmappableError
	if errors.As(err, &ue) {
		r.diags.Add(ue.Span, diag.Warning, ue.Decl, ue.Error())
		r.e.log.Debugw("declaration unmappable", "decl", ue.Decl, "reason", ue.Reason)
		return
	}

	r.diags.Add(decl.Span{}, diag.Error, "", err.Error())
}

func (r *run) boxedTypes() []string {
	set := make(map[string]bool)
	for _, s := range r.scopes {
		for _, g := range s.Groups {
			for _, p := range g.Plans {
				for _, b := range p.BoxedTypes {
					set[b] = true
				}
			}
		}
	}

	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Strings(out)

	return out
}
