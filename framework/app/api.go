package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/km-arc/go-opengenerics/framework/catalog"
	"github.com/km-arc/go-opengenerics/framework/container"
	"github.com/km-arc/go-opengenerics/framework/generic"
	"github.com/km-arc/go-opengenerics/framework/http/validation"
	"github.com/km-arc/go-opengenerics/framework/routing"
	"github.com/km-arc/go-opengenerics/framework/types"
)

// API serves the current catalog snapshot over HTTP.
//
//	GET  /health
//	GET  /api/v1/types[?kind=plain|definition]
//	GET  /api/v1/types/{name}
//	POST /api/v1/match     {"service", "implementation", "suppress_type_constraint_checks"}
//	GET  /api/v1/resolve?service=IRepository<Customer>
type API struct {
	Controller
	store *catalog.Store
}

// NewAPI returns handlers reading from store.
func NewAPI(store *catalog.Store) *API {
	return &API{store: store}
}

// Routes mounts the handlers on r.
func (api *API) Routes(r *routing.Router) {
	r.Get("/health", api.Health)
	r.Prefix("/api/v1", func(v1 *routing.Router) {
		v1.Get("/types", api.Types)
		v1.Get("/types/{name}", api.Type)
		v1.Post("/match", api.Match)
		v1.Get("/resolve", api.Resolve)
	})
}

var (
	typeRules    = validation.Rules{"kind": "sometimes|in:plain,definition"}
	nameRules    = validation.Rules{"name": "required|max:128|identifier"}
	serviceRules = validation.Rules{"service": "required|max:512|type"}
	matchRules   = validation.Rules{
		"service":        "required|max:512|type",
		"implementation": "required|max:512|type",
	}
)

// ── Views ────────────────────────────────────────────────────────────────────

type catalogView struct {
	Source        string    `json:"source"`
	Version       string    `json:"version"`
	LoadedAt      time.Time `json:"loaded_at"`
	Types         int       `json:"types"`
	Registrations int       `json:"registrations"`
}

type typeView struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Params []paramView `json:"params,omitempty"`
	Bases  []string    `json:"bases,omitempty"`
}

type paramView struct {
	Name        string   `json:"name"`
	Constraints []string `json:"constraints,omitempty"`
}

type matchRequest struct {
	Service                      string `json:"service"`
	Implementation               string `json:"implementation"`
	SuppressTypeConstraintChecks bool   `json:"suppress_type_constraint_checks"`
}

type matchResult struct {
	Valid                bool     `json:"valid"`
	ClosedImplementation string   `json:"closed_implementation,omitempty"`
	Candidates           []string `json:"candidates"`
}

type resolveResult struct {
	Service        string `json:"service"`
	Implementation string `json:"implementation"`
	Instance       string `json:"instance"`
}

func viewOf(reg *types.Registry, t *types.Type) typeView {
	v := typeView{Type: t.String(), Name: t.Name(), Kind: t.Kind().String()}
	for _, p := range t.Params() {
		pv := paramView{Name: p.Name()}
		for _, c := range p.Constraints() {
			pv.Constraints = append(pv.Constraints, c.String())
		}
		v.Params = append(v.Params, pv)
	}
	v.Bases = names(reg.Bases(t))
	return v
}

func names(ts []*types.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

// ── Handlers ─────────────────────────────────────────────────────────────────

// snapshot writes 503 and returns nil when no catalog is loaded.
func (api *API) snapshot(w http.ResponseWriter) *catalog.Snapshot {
	snap := api.store.Current()
	if snap == nil {
		api.Response(w).Unavailable("No catalog loaded.")
	}
	return snap
}

// Health reports the loaded catalog.
func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	snap := api.snapshot(w)
	if snap == nil {
		return
	}
	api.Response(w).Success(map[string]any{
		"status":  "ok",
		"version": Version,
		"catalog": catalogView{
			Source:        snap.Source,
			Version:       snap.Catalog.Version.String(),
			LoadedAt:      snap.LoadedAt,
			Types:         snap.Catalog.Registry.Len(),
			Registrations: len(snap.Catalog.Registrations),
		},
	})
}

// Types lists the declared types, optionally of one kind.
func (api *API) Types(w http.ResponseWriter, r *http.Request) {
	snap := api.snapshot(w)
	if snap == nil {
		return
	}

	req, res := api.Request(r), api.Response(w)
	input := map[string]string{}
	if req.Has("kind") {
		input["kind"] = req.Query("kind")
	}
	if v := validation.Make(input, typeRules); v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	reg := snap.Catalog.Registry
	out := []typeView{}
	for _, t := range reg.Types() {
		if kind, ok := input["kind"]; ok && t.Kind().String() != kind {
			continue
		}
		out = append(out, viewOf(reg, t))
	}
	res.Success(out)
}

// Type returns every declaration with the given name, one per arity.
func (api *API) Type(w http.ResponseWriter, r *http.Request) {
	snap := api.snapshot(w)
	if snap == nil {
		return
	}

	req, res := api.Request(r), api.Response(w)
	name := req.RouteParam("name")
	if v := validation.Make(map[string]string{"name": name}, nameRules); v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	reg := snap.Catalog.Registry
	decls := reg.Named(name)
	if len(decls) == 0 {
		res.NotFound(fmt.Sprintf("No type named %q.", name))
		return
	}
	out := make([]typeView, len(decls))
	for i, t := range decls {
		out[i] = viewOf(reg, t)
	}
	res.Success(out)
}

// Match runs the generic type builder for one service and implementation.
func (api *API) Match(w http.ResponseWriter, r *http.Request) {
	snap := api.snapshot(w)
	if snap == nil {
		return
	}

	req, res := api.Request(r), api.Response(w)

	var body matchRequest
	if err := req.Bind(&body); err != nil {
		res.BadRequest("Malformed request body.")
		return
	}
	input := map[string]string{"service": body.Service, "implementation": body.Implementation}
	if v := validation.Make(input, matchRules); v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	reg := snap.Catalog.Registry
	service, err := types.Parse(reg, body.Service)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}
	impl, err := types.Parse(reg, body.Implementation)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}

	b := generic.NewBuilder(reg, service, impl)
	b.SuppressTypeConstraintChecks = body.SuppressTypeConstraintChecks
	result := b.BuildClosedGenericImplementation()

	out := matchResult{Valid: result.IsValid(), Candidates: names(b.CandidateServiceTypes())}
	if result.IsValid() {
		out.ClosedImplementation = result.ClosedGenericImplementation().String()
	}
	res.Success(out)
}

// Resolve reports what the catalog's container builds for a closed service.
func (api *API) Resolve(w http.ResponseWriter, r *http.Request) {
	snap := api.snapshot(w)
	if snap == nil {
		return
	}

	req, res := api.Request(r), api.Response(w)
	expr := req.Query("service")
	if v := validation.Make(map[string]string{"service": expr}, serviceRules); v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	service, err := types.Parse(snap.Catalog.Registry, expr)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}
	impl, err := snap.Container.ImplementationFor(service)
	switch {
	case container.IsNotFound(err):
		res.NotFound(err.Error())
		return
	case err != nil:
		res.BadRequest(err.Error())
		return
	}
	instance, err := snap.Container.Make(service)
	if err != nil {
		var cycle *container.CircularDependencyError
		if errors.As(err, &cycle) {
			res.Error(http.StatusConflict, err.Error())
			return
		}
		res.ServerError(err.Error())
		return
	}
	res.Success(resolveResult{
		Service:        service.String(),
		Implementation: impl.String(),
		Instance:       fmt.Sprint(instance),
	})
}
