// Command synopsis ingests USFM books and topic sheets into a document store
// and serves them over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/synopsis/core/citation"
	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/core/resolve"
	"github.com/FocuswithJustin/synopsis/core/usfm"
	"github.com/FocuswithJustin/synopsis/internal/api"
	"github.com/FocuswithJustin/synopsis/internal/config"
	"github.com/FocuswithJustin/synopsis/internal/ingest"
	"github.com/FocuswithJustin/synopsis/internal/logging"
	"github.com/FocuswithJustin/synopsis/internal/sqlite"
	"github.com/FocuswithJustin/synopsis/internal/store"
)

const version = "0.1.0"

// Globals are flags accepted by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	EnvFile   string `name:"env-file" help:".env file loaded before SYNOPSIS_* variables are read" type:"path"`
	Store     string `name:"store" short:"s" help:"Document store path (overrides configuration)"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" help:"Log format: json, text"`
}

// CLI defines the command-line interface for synopsis.
type CLI struct {
	Globals

	Ingest  IngestGroup  `cmd:"" help:"Load sources into the document store"`
	Parse   ParseGroup   `cmd:"" help:"Parse input without storing it"`
	Resolve ResolveGroup `cmd:"" help:"Resolve book and collection names"`
	Sources SourcesCmd   `cmd:"" help:"List ingested sources"`
	Serve   ServeCmd     `cmd:"" help:"Start the HTTP read API"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// IngestGroup contains ingestion commands.
type IngestGroup struct {
	Bible      IngestBibleCmd      `cmd:"" help:"Ingest USFM books (.usfm, .sfm, optionally .xz compressed)"`
	Topics     IngestTopicsCmd     `cmd:"" help:"Ingest cross-reference sheets (.csv, .xlsx, .ods)"`
	TopicsJSON IngestTopicsJSONCmd `cmd:"" name:"topics-json" help:"Ingest JSON topic lists"`
}

// ParseGroup contains parse-only commands.
type ParseGroup struct {
	USFM     ParseUSFMCmd     `cmd:"" name:"usfm" help:"Parse a USFM file and print the document as JSON"`
	Cell     ParseCellCmd     `cmd:"" help:"Split a spreadsheet citation cell"`
	Citation ParseCitationCmd `cmd:"" help:"Parse a free-text citation"`
}

// ResolveGroup contains name resolution commands.
type ResolveGroup struct {
	Book       ResolveBookCmd       `cmd:"" help:"Resolve a book name against stored books"`
	Collection ResolveCollectionCmd `cmd:"" help:"Resolve a language/version pair against stored collections"`
}

// App carries the loaded configuration into command Run methods.
type App struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

func newApp(g Globals, stdout, stderr io.Writer) (*App, error) {
	cfg, err := config.Load(g.Config, g.EnvFile)
	if err != nil {
		return nil, err
	}
	if g.Store != "" {
		cfg.Store.Path = g.Store
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.InitLoggerTo(stderr, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
	return &App{Config: cfg, Stdout: stdout, Stderr: stderr}, nil
}

func (a *App) openStore() (*store.Store, error) {
	return store.Open(a.Config.Store.Path)
}

func (a *App) resolver() *resolve.Resolver {
	return resolve.New(nil, resolve.WithMinContainment(a.Config.Resolver.MinContainment))
}

func (a *App) ingester(st *store.Store, force, noProgress bool) *ingest.Ingester {
	var progress ingest.Progress = ingest.Nop
	if a.Config.Ingest.Progress && !noProgress {
		progress = ingest.NewBar(a.Stderr)
	}
	return ingest.New(st,
		ingest.WithBatchSize(a.Config.Ingest.BatchSize),
		ingest.WithProgress(progress),
		ingest.WithForce(force),
	)
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// IngestFlags are shared by the ingest commands.
type IngestFlags struct {
	Force      bool `help:"Re-ingest sources whose content was already ingested"`
	NoProgress bool `name:"no-progress" help:"Disable the progress bar"`
}

// ingestEach runs fn over every path and prints the results.
func (a *App) ingestEach(paths []string, flags IngestFlags, fn func(context.Context, *ingest.Ingester, *ingest.Source) (*ingest.Result, error)) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	in := a.ingester(st, flags.Force, flags.NoProgress)
	results := make([]*ingest.Result, 0, len(paths))
	for _, path := range paths {
		src, err := ingest.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := fn(ctx, in, src)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	return a.printJSON(results)
}

// IngestBibleCmd ingests USFM books.
type IngestBibleCmd struct {
	Paths []string `arg:"" help:"USFM files" type:"existingfile"`
	IngestFlags
}

func (c *IngestBibleCmd) Run(app *App) error {
	return app.ingestEach(c.Paths, c.IngestFlags, func(ctx context.Context, in *ingest.Ingester, src *ingest.Source) (*ingest.Result, error) {
		return in.Bible(ctx, src)
	})
}

// TopicFlags select the target collection of a topic ingest.
type TopicFlags struct {
	Language string   `help:"Collection language (default: from file name)"`
	Version  string   `help:"Collection version (default: from file name)"`
	Books    []string `help:"Book names of the citation columns, in order" sep:","`
}

func (f TopicFlags) options() ingest.TopicsOptions {
	return ingest.TopicsOptions{Language: f.Language, Version: f.Version, Books: f.Books}
}

// IngestTopicsCmd ingests cross-reference sheets.
type IngestTopicsCmd struct {
	Paths []string `arg:"" help:"Sheet files named <language>_<version>.<ext>" type:"existingfile"`
	TopicFlags
	IngestFlags
}

func (c *IngestTopicsCmd) Run(app *App) error {
	opts := c.options()
	return app.ingestEach(c.Paths, c.IngestFlags, func(ctx context.Context, in *ingest.Ingester, src *ingest.Source) (*ingest.Result, error) {
		return in.Topics(ctx, src, opts)
	})
}

// IngestTopicsJSONCmd ingests JSON topic lists.
type IngestTopicsJSONCmd struct {
	Paths []string `arg:"" help:"JSON files" type:"existingfile"`
	TopicFlags
	IngestFlags
}

func (c *IngestTopicsJSONCmd) Run(app *App) error {
	opts := c.options()
	return app.ingestEach(c.Paths, c.IngestFlags, func(ctx context.Context, in *ingest.Ingester, src *ingest.Source) (*ingest.Result, error) {
		return in.TopicsJSON(ctx, src, opts)
	})
}

// ParseUSFMCmd prints a parsed USFM document.
type ParseUSFMCmd struct {
	Path string `arg:"" help:"USFM file" type:"existingfile"`
}

func (c *ParseUSFMCmd) Run(app *App) error {
	src, err := ingest.ReadFile(c.Path)
	if err != nil {
		return err
	}
	doc, err := usfm.ParseReader(src.Reader())
	if err != nil {
		return err
	}
	return app.printJSON(doc)
}

// ParseCellCmd splits a citation cell.
type ParseCellCmd struct {
	Text string `arg:"" help:"Cell text, e.g. 1:6-8;15-28"`
	Book string `help:"Book of the cell's column; prints entries instead of pairs"`
}

func (c *ParseCellCmd) Run(app *App) error {
	refs := citation.ParseCell(c.Text)
	if c.Book == "" {
		if refs == nil {
			refs = []citation.CellRef{}
		}
		return app.printJSON(refs)
	}
	set := citation.NewSet()
	for _, ref := range refs {
		set.Add(ref.Entry(c.Book))
	}
	return app.printJSON(set.Entries())
}

// ParseCitationCmd parses free-text citations.
type ParseCitationCmd struct {
	Text string `arg:"" help:"Citation text, e.g. \"1 Samuel 3:4-10\""`
	Book string `help:"Book used when the text has none"`
}

func (c *ParseCitationCmd) Run(app *App) error {
	e, ok := citation.ParseText(c.Text, c.Book)
	if !ok {
		return errors.NewParse("citation", "", "cannot parse "+fmt.Sprintf("%q", c.Text))
	}
	return app.printJSON(e)
}

// resolution is the printed result of a resolve command.
type resolution struct {
	Requested string `json:"requested"`
	ID        string `json:"id"`
	Strategy  string `json:"strategy"`
}

// directory returns dir when given, else the ids stored under parent.
func (a *App) directory(dir []string, parent string) (resolve.Static, error) {
	if len(dir) > 0 {
		return resolve.Static(dir), nil
	}
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	ids, err := st.List(context.Background(), parent)
	return resolve.Static(ids), err
}

// ResolveBookCmd resolves a book name.
type ResolveBookCmd struct {
	Name string   `arg:"" help:"Book name in any supported spelling"`
	Dir  []string `help:"Resolve against these ids instead of the store" sep:","`
}

func (c *ResolveBookCmd) Run(app *App) error {
	dir, err := app.directory(c.Dir, ingest.BiblesRoot)
	if err != nil {
		return err
	}
	m, ok := app.resolver().Book(c.Name, dir)
	if !ok {
		logging.ResolutionMiss(context.Background(), "book", c.Name, len(dir))
		return errors.NewUnresolved("book", c.Name)
	}
	return app.printJSON(resolution{Requested: c.Name, ID: m.ID, Strategy: m.Strategy.String()})
}

// ResolveCollectionCmd resolves a topic collection.
type ResolveCollectionCmd struct {
	Language string   `arg:"" help:"Language name"`
	Version  string   `arg:"" help:"Version name"`
	Dir      []string `help:"Resolve against these ids instead of the store" sep:","`
}

func (c *ResolveCollectionCmd) Run(app *App) error {
	dir, err := app.directory(c.Dir, ingest.ReferencesRoot)
	if err != nil {
		return err
	}
	requested := c.Language + "/" + c.Version
	m, ok := app.resolver().Collection(c.Language, c.Version, dir)
	if !ok {
		logging.ResolutionMiss(context.Background(), "collection", requested, len(dir))
		return errors.NewUnresolved("collection", requested)
	}
	return app.printJSON(resolution{Requested: requested, ID: m.ID, Strategy: m.Strategy.String()})
}

// SourcesCmd lists the source registry.
type SourcesCmd struct{}

func (c *SourcesCmd) Run(app *App) error {
	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	sources, err := st.Sources(context.Background())
	if err != nil {
		return err
	}
	if sources == nil {
		sources = []store.Source{}
	}
	return app.printJSON(sources)
}

// ServeCmd starts the HTTP read API.
type ServeCmd struct {
	Host string `help:"Listen host (overrides configuration)"`
	Port int    `help:"Listen port (overrides configuration)"`
}

func (c *ServeCmd) Run(app *App) error {
	cfg := app.Config
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := api.New(st, app.resolver(), api.Config{
		CacheTTL:       cfg.Server.CacheTTL,
		RequestTimeout: cfg.Server.WriteTimeout,
		RateLimit: api.RateLimiterConfig{
			RequestsPerMinute: cfg.Server.RateLimit,
			BurstSize:         cfg.Server.RateBurst,
		},
		Auth: api.AuthConfig{Enabled: cfg.Server.APIKey != "", APIKey: cfg.Server.APIKey},
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := sqlite.GetInfo()
	logging.ServerStartup("read_api", "http", cfg.Server.Port,
		"addr", cfg.Addr(),
		"store", cfg.Store.Path,
		"sqlite_driver", info.Package,
		"auth", cfg.Server.APIKey != "",
		"rate_limit", cfg.Server.RateLimit,
	)
	return api.Serve(ctx, &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, cfg.Server.GracefulShutdown)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	info := sqlite.GetInfo()
	_, err := fmt.Fprintf(app.Stdout, "synopsis version %s (sqlite driver %s)\n", version, info.Package)
	return err
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("synopsis"),
		kong.Description("Scripture and topic ingestion with a fuzzy-resolving read API"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	app, err := newApp(cli.Globals, stdout, stderr)
	if err != nil {
		return err
	}
	return kctx.Run(app)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "synopsis: %v\n", err)
		os.Exit(1)
	}
}
