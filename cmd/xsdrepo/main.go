// Command xsdrepo inspects XML schema repositories: statistics,
// qualified-name lookup, dependency and hierarchy queries, packaging
// and package merging.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xsdrepo"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

const usage = `Usage: xsdrepo <command> [options] [arguments]

Commands:
  stats      show repository statistics
  find       resolve a qualified name (prefix:local, {uri}local or bare)
  deps       show the dependency graph of a type (--reverse for dependents)
  hierarchy  show the inheritance chain and derived types of a type
  validate   check entry files, parse completeness and import cycles
  package    serialize the repository into a package archive
  merge      check packages for namespace/type/schema conflicts
`

// repoOptions configures the repository shared by most commands.
type repoOptions struct {
	Schemas    []string `short:"s" long:"schema" description:"entry schema file, repeatable"`
	Namespaces []string `short:"n" long:"namespace" description:"namespace binding as prefix=uri, repeatable"`
	Mappings   []string `short:"m" long:"map" description:"exact schemaLocation mapping as from=to, repeatable"`
	Patterns   []string `long:"map-pattern" description:"pattern schemaLocation mapping as regex=to, repeatable"`
	Package    string   `short:"p" long:"package" description:"load the repository from a package archive instead of schema files"`
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	command, rest := args[0], args[1:]

	var err error
	switch command {
	case "stats":
		err = runStats(rest, stdout)
	case "find":
		return runFind(rest, stdout, stderr)
	case "deps":
		err = runDeps(rest, stdout)
	case "hierarchy":
		err = runHierarchy(rest, stdout)
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "package":
		err = runPackage(rest, stdout)
	case "merge":
		return runMerge(rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fmt.Fprint(stderr, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func buildRepository(opts repoOptions) (*xsdrepo.Repository, error) {
	if opts.Package != "" {
		repo, _, err := xsdrepo.FromPackage(context.Background(), opts.Package)
		if err != nil {
			return nil, err
		}
		if err := repo.Resolve(); err != nil {
			return nil, err
		}
		return repo, nil
	}
	if len(opts.Schemas) == 0 {
		return nil, fmt.Errorf("at least one --schema (or a --package) is required")
	}

	options := xsdrepo.NewOptions().WithFS(os.DirFS(".")).WithEntry(opts.Schemas...)
	for _, binding := range opts.Namespaces {
		prefix, uri, err := splitPair(binding, "namespace")
		if err != nil {
			return nil, err
		}
		options = options.WithNamespace(prefix, uri)
	}
	for _, mapping := range opts.Mappings {
		from, to, err := splitPair(mapping, "map")
		if err != nil {
			return nil, err
		}
		options = options.WithLocationMapping(from, to)
	}
	for _, mapping := range opts.Patterns {
		expr, to, err := splitPair(mapping, "map-pattern")
		if err != nil {
			return nil, err
		}
		options = options.WithLocationPattern(expr, to)
	}

	repo, err := xsdrepo.NewRepository(options)
	if err != nil {
		return nil, err
	}
	if err := repo.Resolve(); err != nil {
		return nil, err
	}
	return repo, nil
}

func splitPair(value, option string) (string, string, error) {
	idx := strings.Index(value, "=")
	if idx <= 0 || idx == len(value)-1 {
		return "", "", fmt.Errorf("--%s %q: expected key=value", option, value)
	}
	return value[:idx], value[idx+1:], nil
}

func runStats(args []string, stdout io.Writer) error {
	var opts repoOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}
	repo, err := buildRepository(opts)
	if err != nil {
		return err
	}
	stats := repo.Statistics()
	fmt.Fprintf(stdout, "schemas:    %d\n", stats.TotalSchemas)
	fmt.Fprintf(stdout, "types:      %d\n", stats.TotalTypes)
	fmt.Fprintf(stdout, "namespaces: %d\n", stats.TotalNamespaces)
	for _, category := range xsdrepo.Categories() {
		if n := stats.TypesByCategory[category]; n > 0 {
			fmt.Fprintf(stdout, "  %-16s %d\n", category, n)
		}
	}
	for prefix, uri := range stats.NamespacePrefixes {
		fmt.Fprintf(stdout, "  xmlns:%s = %s\n", prefix, uri)
	}
	for _, warning := range repo.Warnings() {
		fmt.Fprintf(stdout, "warning: %s\n", warning)
	}
	return nil
}

type findOptions struct {
	repoOptions
	Args struct {
		QName string `positional-arg-name:"qname" required:"yes"`
	} `positional-args:"yes"`
}

func runFind(args []string, stdout, stderr io.Writer) int {
	var opts findOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	repo, err := buildRepository(opts.repoOptions)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	result := repo.FindType(opts.Args.QName)
	for _, step := range result.Trace {
		fmt.Fprintf(stdout, "  %s\n", step)
	}
	if !result.Resolved {
		fmt.Fprintf(stderr, "error: %s\n", result.Err)
		if len(result.Suggestions) > 0 {
			fmt.Fprintf(stderr, "did you mean: %s\n", strings.Join(result.Suggestions, ", "))
		}
		return 1
	}
	fmt.Fprintf(stdout, "%s (%s) defined in %s\n", result.Display(repo), result.Category, result.SchemaFile)
	if result.Documentation != "" {
		fmt.Fprintf(stdout, "%s\n", result.Documentation)
	}
	return 0
}

type depsOptions struct {
	repoOptions
	Depth   int  `short:"d" long:"depth" description:"traversal depth, 0 for default"`
	Reverse bool `short:"r" long:"reverse" description:"show dependents instead of dependencies"`
	Args    struct {
		QName string `positional-arg-name:"qname" required:"yes"`
	} `positional-args:"yes"`
}

func runDeps(args []string, stdout io.Writer) error {
	var opts depsOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}
	repo, err := buildRepository(opts.repoOptions)
	if err != nil {
		return err
	}
	var result any
	if opts.Reverse {
		result, err = repo.Dependents(opts.Args.QName)
	} else {
		result, err = repo.Dependencies(opts.Args.QName, opts.Depth)
	}
	if err != nil {
		return err
	}
	return writeYAML(stdout, result)
}

type hierarchyOptions struct {
	repoOptions
	Depth int `short:"d" long:"depth" description:"traversal depth, 0 for default"`
	Args  struct {
		QName string `positional-arg-name:"qname" required:"yes"`
	} `positional-args:"yes"`
}

func runHierarchy(args []string, stdout io.Writer) error {
	var opts hierarchyOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}
	repo, err := buildRepository(opts.repoOptions)
	if err != nil {
		return err
	}
	hierarchy, err := repo.Hierarchy(opts.Args.QName, opts.Depth)
	if err != nil {
		return err
	}
	return writeYAML(stdout, hierarchy)
}

type validateOptions struct {
	repoOptions
	Strict bool `long:"strict" description:"fail on the first problem"`
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	var opts validateOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	repo, err := buildRepository(opts.repoOptions)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	problems, err := repo.Validate(opts.Strict)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	for _, warning := range repo.Warnings() {
		fmt.Fprintf(stdout, "warning: %s\n", warning)
	}
	if len(problems) > 0 {
		for _, problem := range problems {
			fmt.Fprintf(stderr, "error: %s\n", problem)
		}
		return 1
	}
	fmt.Fprintln(stdout, "repository validates")
	return 0
}

type packageOptions struct {
	repoOptions
	Out         string `short:"o" long:"out" description:"package destination url or path" required:"yes"`
	Name        string `long:"name" description:"package name" required:"yes"`
	Version     string `long:"version" description:"package version" required:"yes"`
	Description string `long:"description" description:"package description"`
	Format      string `short:"f" long:"format" description:"payload encoding: gob, json or yaml" default:"gob"`
	External    bool   `long:"external" description:"reference .xsd sources on disk instead of bundling them"`
	Bare        bool   `long:"bare" description:"store sources only, re-parse on load"`
}

func runPackage(args []string, stdout io.Writer) error {
	var opts packageOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}
	repo, err := buildRepository(opts.repoOptions)
	if err != nil {
		return err
	}
	pkgOpts := xsdrepo.PackageOptions{
		Name:        opts.Name,
		Version:     opts.Version,
		Description: opts.Description,
		Format:      xsdrepo.PackageFormat(opts.Format),
	}
	if opts.External {
		pkgOpts.Bundling = xsdrepo.BundleExternal
	}
	if opts.Bare {
		pkgOpts.Resolution = xsdrepo.Bare
	}
	meta, err := repo.ToPackage(context.Background(), opts.Out, pkgOpts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s %s (%s) to %s\n", meta.Name, meta.Version, meta.ID, opts.Out)
	return nil
}

type mergeOptions struct {
	Packages []string `short:"p" long:"package" description:"package archive, repeatable, priority follows order"`
	Policy   string   `long:"policy" description:"conflict policy: keep, override or error" default:"keep"`
}

func runMerge(args []string, stdout, stderr io.Writer) int {
	var opts mergeOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	if len(opts.Packages) < 2 {
		fmt.Fprintln(stderr, "error: at least two --package archives are required")
		return 2
	}

	ctx := context.Background()
	sources := make([]xsdrepo.PackageSource, 0, len(opts.Packages))
	for i, pkgPath := range opts.Packages {
		repo, _, err := xsdrepo.FromPackage(ctx, pkgPath)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		if err := repo.Resolve(); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		sources = append(sources, xsdrepo.PackageSource{
			Repository:  repo,
			PackagePath: pkgPath,
			Priority:    i,
			Policy:      xsdrepo.MergePolicy(opts.Policy),
		})
	}

	ordered, report, err := xsdrepo.ResolvePackageSources(sources)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if report != nil && !report.Empty() {
		if err := writeYAML(stdout, report); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	fmt.Fprintln(stdout, "merge order:")
	for _, source := range ordered {
		fmt.Fprintf(stdout, "  %d. %s\n", source.Priority, source.PackagePath)
	}
	return 0
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
