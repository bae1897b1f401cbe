// Command typeresolve checks open generic implementations against a type
// catalog from the command line.
//
//	typeresolve -catalog types.yaml -service 'IRepository<Customer>' -impl 'GenericRepository<>'
//	VALID GenericRepository<Customer>
//
//	typeresolve -catalog types.yaml -service 'IRepository<Order>'
//	RESOLVED GenericRepository<Order> -> CachedRepository<Order>(GenericRepository<Order>)
//
// Exit status is 0 for a match, 1 for no match and 2 for usage or catalog
// errors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/km-arc/go-opengenerics/framework/catalog"
	"github.com/km-arc/go-opengenerics/framework/config"
	"github.com/km-arc/go-opengenerics/framework/container"
	"github.com/km-arc/go-opengenerics/framework/generic"
	"github.com/km-arc/go-opengenerics/framework/types"
)

const (
	exitMatch = 0
	exitMiss  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("typeresolve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	catalogPath := fs.String("catalog", config.Get("CATALOG_PATH", "types.yaml"), "type catalog to load")
	service := fs.String("service", "", "closed service type, e.g. IRepository<Customer>")
	impl := fs.String("impl", "", "implementation to close; empty resolves through the catalog's registrations")
	suppress := fs.Bool("suppress", false, "leave undetermined parameter slots open")
	verbose := fs.Bool("v", false, "list candidate service types")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *service == "" {
		fmt.Fprintln(stderr, "typeresolve: -service is required")
		fs.Usage()
		return exitUsage
	}

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Fprintf(stderr, "typeresolve: %v\n", err)
		return exitUsage
	}
	svc, err := types.Parse(cat.Registry, *service)
	if err != nil {
		fmt.Fprintf(stderr, "typeresolve: -service: %v\n", err)
		return exitUsage
	}

	out := newPrinter(stdout)
	if *impl == "" {
		return resolve(cat, svc, out, stderr)
	}

	implType, err := types.Parse(cat.Registry, *impl)
	if err != nil {
		fmt.Fprintf(stderr, "typeresolve: -impl: %v\n", err)
		return exitUsage
	}
	b := generic.NewBuilder(cat.Registry, svc, implType)
	b.SuppressTypeConstraintChecks = *suppress
	if *verbose {
		for _, c := range b.CandidateServiceTypes() {
			fmt.Fprintf(stdout, "candidate %s\n", c)
		}
	}
	res := b.BuildClosedGenericImplementation()
	if !res.IsValid() {
		out.status(false, "INVALID")
		fmt.Fprintln(stdout)
		return exitMiss
	}
	out.status(true, "VALID")
	fmt.Fprintf(stdout, " %s\n", res.ClosedGenericImplementation())
	return exitMatch
}

func resolve(cat *catalog.Catalog, svc *types.Type, out printer, stderr io.Writer) int {
	c, err := cat.Container(nil)
	if err != nil {
		fmt.Fprintf(stderr, "typeresolve: %v\n", err)
		return exitUsage
	}
	impl, err := c.ImplementationFor(svc)
	if container.IsNotFound(err) {
		out.status(false, "UNRESOLVED")
		fmt.Fprintf(out.w, " %s\n", svc)
		return exitMiss
	}
	if err != nil {
		fmt.Fprintf(stderr, "typeresolve: %v\n", err)
		return exitUsage
	}
	instance, err := c.Make(svc)
	if err != nil {
		fmt.Fprintf(stderr, "typeresolve: %v\n", err)
		return exitUsage
	}
	out.status(true, "RESOLVED")
	fmt.Fprintf(out.w, " %s -> %v\n", impl, instance)
	return exitMatch
}

// printer colours status words when writing to a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) printer {
	p := printer{w: w}
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		p.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

func (p printer) status(ok bool, word string) {
	if !p.color {
		fmt.Fprint(p.w, word)
		return
	}
	code := "31"
	if ok {
		code = "32"
	}
	fmt.Fprintf(p.w, "\x1b[%sm%s\x1b[0m", code, word)
}
