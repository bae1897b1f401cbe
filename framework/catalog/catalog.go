// Package catalog loads type facts and container registrations from YAML.
//
//	version: 1.2.0
//	types:
//	  - name: IRepository
//	    params: [T]
//	  - name: GenericRepository
//	    params:
//	      - name: T
//	        constraints: [{implements: IEntity}]
//	    bases: ["IRepository<T>"]
//	registrations:
//	  - service: IRepository<>
//	    implementation: GenericRepository<>
//	    lifetime: singleton
//
// Types may refer to types declared later in the same document.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-opengenerics/framework/container"
	"github.com/km-arc/go-opengenerics/framework/types"
)

// SupportedVersions is the range of catalog schema versions Parse accepts.
const SupportedVersions = "^1.0"

var (
	// ErrUnsupportedVersion is returned for a missing or unsupported
	// schema version.
	ErrUnsupportedVersion = errors.New("catalog: unsupported version")

	// ErrInvalid is wrapped by every structural error in a document.
	ErrInvalid = errors.New("catalog: invalid document")
)

// Catalog is a parsed document.
type Catalog struct {
	Version       *semver.Version
	Registry      *types.Registry
	Registrations []container.Registration
	Decorators    []Decorator
}

// Decorator wraps a service. With Only set it applies just to those closed
// services.
type Decorator struct {
	Service   *types.Type
	Decorator *types.Type
	Only      []*types.Type
}

// ── Document schema ───────────────────────────────────────────────────────────

type document struct {
	Version       string             `yaml:"version"`
	Types         []typeSpec         `yaml:"types"`
	Registrations []registrationSpec `yaml:"registrations,omitempty"`
	Decorators    []decoratorSpec    `yaml:"decorators,omitempty"`
}

type typeSpec struct {
	Name   string      `yaml:"name"`
	Params []paramSpec `yaml:"params,omitempty"`
	Bases  []string    `yaml:"bases,omitempty"`
}

// paramSpec is written either as a bare name or as a mapping with
// constraints.
type paramSpec struct {
	Name        string           `yaml:"name"`
	Constraints []constraintSpec `yaml:"constraints,omitempty"`
}

func (p *paramSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Name = node.Value
		return nil
	}
	type plain paramSpec
	return node.Decode((*plain)(p))
}

// constraintSpec sets exactly one field.
type constraintSpec struct {
	DerivesFrom string `yaml:"derives_from,omitempty"`
	Implements  string `yaml:"implements,omitempty"`
	Equals      string `yaml:"equals,omitempty"`
}

type registrationSpec struct {
	Service        string `yaml:"service"`
	Implementation string `yaml:"implementation"`
	Lifetime       string `yaml:"lifetime,omitempty"`
}

type decoratorSpec struct {
	Service   string   `yaml:"service"`
	Decorator string   `yaml:"decorator"`
	Only      []string `yaml:"only,omitempty"`
}

// ── Loading ───────────────────────────────────────────────────────────────────

// Load reads and parses the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse builds a catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parsing: %w", err)
	}
	version, err := checkVersion(doc.Version)
	if err != nil {
		return nil, err
	}

	reg := types.NewRegistry()
	if err := declareTypes(reg, doc.Types); err != nil {
		return nil, err
	}

	cat := &Catalog{Version: version, Registry: reg}
	for i, r := range doc.Registrations {
		entry, err := parseRegistration(reg, r)
		if err != nil {
			return nil, fmt.Errorf("%w: registrations[%d]: %w", ErrInvalid, i, err)
		}
		cat.Registrations = append(cat.Registrations, entry)
	}
	for i, d := range doc.Decorators {
		dec, err := parseDecorator(reg, d)
		if err != nil {
			return nil, fmt.Errorf("%w: decorators[%d]: %w", ErrInvalid, i, err)
		}
		cat.Decorators = append(cat.Decorators, dec)
	}

	// Surface unrelated registrations now rather than on first request.
	if _, err := cat.Container(nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cat, nil
}

func checkVersion(v string) (*semver.Version, error) {
	if v == "" {
		return nil, fmt.Errorf("%w: version is required", ErrUnsupportedVersion)
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, v, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(version) {
		return nil, fmt.Errorf("%w: %s, want %s", ErrUnsupportedVersion, version, SupportedVersions)
	}
	return version, nil
}

// declareTypes creates every type first so bases and constraints may refer
// forward, then attaches constraints and declares each type with its bases.
func declareTypes(reg *types.Registry, specs []typeSpec) error {
	shells := newPending(reg)
	defs := make([]*types.Type, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return fmt.Errorf("%w: types[%d]: name is required", ErrInvalid, i)
		}
		if strings.ContainsAny(s.Name, "<>, ") {
			return fmt.Errorf("%w: types[%d]: %q is not a bare name", ErrInvalid, i, s.Name)
		}
		if err := types.CheckSyntax(s.Name); err != nil {
			return fmt.Errorf("%w: types[%d]: %w", ErrInvalid, i, err)
		}
		names := make([]string, len(s.Params))
		for j, p := range s.Params {
			if p.Name == "" {
				return fmt.Errorf("%w: types[%d] %s: params[%d]: name is required", ErrInvalid, i, s.Name, j)
			}
			names[j] = p.Name
		}
		defs[i] = types.NewDefinition(s.Name, names...)
		if err := shells.add(defs[i]); err != nil {
			return fmt.Errorf("%w: types[%d]: %w", ErrInvalid, i, err)
		}
	}

	for i, s := range specs {
		def := defs[i]
		if err := constrain(shells, def, s.Params); err != nil {
			return fmt.Errorf("%w: types[%d] %s: %w", ErrInvalid, i, def, err)
		}
		bases := make([]*types.Type, len(s.Bases))
		for j, expr := range s.Bases {
			b, err := types.Parse(shells, expr, def.Params()...)
			if err != nil {
				return fmt.Errorf("%w: types[%d] %s: bases[%d]: %w", ErrInvalid, i, def, j, err)
			}
			bases[j] = b
		}
		if err := reg.Declare(def, bases...); err != nil {
			return fmt.Errorf("%w: types[%d]: %w", ErrInvalid, i, err)
		}
	}
	return nil
}

func constrain(lookup types.Lookuper, def *types.Type, specs []paramSpec) error {
	params := def.Params()
	for i, ps := range specs {
		p := params[i]
		for _, cs := range ps.Constraints {
			c, err := parseConstraint(lookup, params, cs)
			if err != nil {
				return fmt.Errorf("param %s: %w", p.Name(), err)
			}
			p.Constrain(c)
		}
	}
	return nil
}

func parseConstraint(lookup types.Lookuper, params []*types.Param, cs constraintSpec) (types.Constraint, error) {
	set := 0
	for _, f := range []string{cs.DerivesFrom, cs.Implements, cs.Equals} {
		if f != "" {
			set++
		}
	}
	if set != 1 {
		return types.Constraint{}, errors.New("constraint must set exactly one of derives_from, implements, equals")
	}

	switch {
	case cs.Equals != "":
		for _, q := range params {
			if q.Name() == cs.Equals {
				return types.MustEqual(cs.Equals), nil
			}
		}
		return types.Constraint{}, fmt.Errorf("equals: no parameter named %q", cs.Equals)
	case cs.Implements != "":
		t, err := types.Parse(lookup, cs.Implements, params...)
		if err != nil {
			return types.Constraint{}, err
		}
		return types.MustImplement(t), nil
	default:
		t, err := types.Parse(lookup, cs.DerivesFrom, params...)
		if err != nil {
			return types.Constraint{}, err
		}
		return types.MustDeriveFrom(t), nil
	}
}

func parseRegistration(reg *types.Registry, r registrationSpec) (container.Registration, error) {
	service, err := types.Parse(reg, r.Service)
	if err != nil {
		return container.Registration{}, fmt.Errorf("service: %w", err)
	}
	impl, err := types.Parse(reg, r.Implementation)
	if err != nil {
		return container.Registration{}, fmt.Errorf("implementation: %w", err)
	}
	lifetime, err := container.ParseLifetime(r.Lifetime)
	if err != nil {
		return container.Registration{}, err
	}
	return container.Registration{Service: service, Implementation: impl, Lifetime: lifetime}, nil
}

func parseDecorator(reg *types.Registry, d decoratorSpec) (Decorator, error) {
	service, err := types.Parse(reg, d.Service)
	if err != nil {
		return Decorator{}, fmt.Errorf("service: %w", err)
	}
	dec, err := types.Parse(reg, d.Decorator)
	if err != nil {
		return Decorator{}, fmt.Errorf("decorator: %w", err)
	}
	out := Decorator{Service: service, Decorator: dec}
	for i, expr := range d.Only {
		t, err := types.Parse(reg, expr)
		if err != nil {
			return Decorator{}, fmt.Errorf("only[%d]: %w", i, err)
		}
		out.Only = append(out.Only, t)
	}
	return out, nil
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container returns a new container over the catalog's registry holding its
// registrations and decorators. A nil logger discards output.
func (c *Catalog) Container(logger *zap.Logger) (*container.Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctr := container.New(c.Registry, container.WithLogger(logger))
	for _, r := range c.Registrations {
		if err := ctr.Register(r.Service, r.Implementation, r.Lifetime); err != nil {
			return nil, err
		}
	}
	for _, d := range c.Decorators {
		var opts []container.DecorateOption
		if len(d.Only) > 0 {
			opts = append(opts, container.WithPredicate(d.applies))
		}
		if err := ctr.Decorate(d.Service, d.Decorator, opts...); err != nil {
			return nil, err
		}
	}
	return ctr, nil
}

func (d Decorator) applies(service *types.Type) bool {
	for _, t := range d.Only {
		if t.Equal(service) {
			return true
		}
	}
	return false
}

// ── pending ───────────────────────────────────────────────────────────────────

// pending resolves names against types created but not yet declared, then
// against the registry.
type pending struct {
	reg   *types.Registry
	names map[string][]*types.Type
}

func newPending(reg *types.Registry) *pending {
	return &pending{reg: reg, names: make(map[string][]*types.Type)}
}

func (p *pending) add(t *types.Type) error {
	if _, ok := p.Lookup(t.Name(), t.Arity()); ok {
		return &types.DuplicateTypeError{Key: t.Key()}
	}
	p.names[t.Name()] = append(p.names[t.Name()], t)
	return nil
}

func (p *pending) Lookup(name string, arity int) (*types.Type, bool) {
	for _, t := range p.names[name] {
		if t.Arity() == arity {
			return t, true
		}
	}
	return p.reg.Lookup(name, arity)
}

func (p *pending) Named(name string) []*types.Type {
	return append(p.reg.Named(name), p.names[name]...)
}
