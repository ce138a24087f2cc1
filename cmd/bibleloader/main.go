// Command bibleloader serves and inspects offline Bible translations, and
// builds the asset files they are loaded from.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/bibleloader/core/assets"
	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
	"github.com/FocuswithJustin/bibleloader/core/sqlite"
	"github.com/FocuswithJustin/bibleloader/internal/config"
	"github.com/FocuswithJustin/bibleloader/internal/importer"
	"github.com/FocuswithJustin/bibleloader/internal/loader"
	"github.com/FocuswithJustin/bibleloader/internal/logging"
	"github.com/FocuswithJustin/bibleloader/internal/metrics"
	"github.com/FocuswithJustin/bibleloader/internal/server"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config    string `help:"YAML config file" type:"path" env:"BIBLELOADER_CONFIG"`
	Assets    string `help:"Asset directory (default: assets compiled into the binary)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" help:"Log format: json, text"`

	Out io.Writer `kong:"-"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Serve        ServeCmd        `cmd:"" help:"Start the HTTP API server"`
	Translations TranslationsCmd `cmd:"" help:"List available translations"`
	Info         InfoCmd         `cmd:"" help:"Show translation metadata"`
	Books        BooksCmd        `cmd:"" help:"List the books of a translation"`
	Read         ReadCmd         `cmd:"" help:"Print a chapter or verse range"`
	Search       SearchCmd       `cmd:"" help:"Search verse text"`
	Build        BuildCmd        `cmd:"" help:"Build assets from a source Bible file"`
	Verify       VerifyCmd       `cmd:"" help:"Verify an asset directory"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

// env is the resolved configuration and asset source for one command.
type env struct {
	cfg *config.Config
	src assets.Source
}

// setup loads configuration, applies flag overrides, initializes logging
// and opens the asset source.
func (g *Globals) setup() (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Assets != "" {
		cfg.Assets.Dir = g.Assets
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	format, _ := logging.ParseFormat(cfg.Logging.Format)
	// Command output goes to Out; logs stay on stderr.
	logging.InitLoggerWithWriter(os.Stderr, level, format)

	var src assets.Source
	if cfg.Assets.Dir != "" {
		src, err = assets.Dir(cfg.Assets.Dir)
	} else {
		src, err = assets.Embedded()
	}
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, src: src}, nil
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// loaded returns a loaded Loader for id, so load failures surface as errors
// instead of empty output.
func (g *Globals) loaded(id string) (*loader.Loader, error) {
	e, err := g.setup()
	if err != nil {
		return nil, err
	}
	l, err := loader.New(id, e.src)
	if err != nil {
		return nil, err
	}
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	Host string `help:"Listen host (overrides config)"`
	Port int    `help:"Listen port (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	if c.Host != "" {
		e.cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		e.cfg.Server.Port = c.Port
	}

	var m *metrics.Metrics
	if e.cfg.Metrics.Enabled {
		m = metrics.New()
	}
	reg := loader.NewRegistry(e.src, loader.WithMetrics(m))
	defer reg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(e.cfg.Assets.Preload) > 0 {
		// A failed preload is retried by the first read, so keep serving.
		if err := reg.Preload(ctx, e.cfg.Assets.Preload...); err != nil {
			logging.Warn("preload failed", "error", err)
		}
	}
	logging.Info("assets",
		"dir", e.cfg.Assets.Dir,
		"translations", reg.Available(),
		"sqlite_driver", sqlite.DriverType())

	srv := server.New(e.cfg, reg, server.WithMetrics(m), server.WithVersion(version))
	return srv.Run(ctx)
}

// TranslationsCmd lists the available translations.
type TranslationsCmd struct {
	JSON bool `help:"Print JSON"`
}

func (c *TranslationsCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	reg := loader.NewRegistry(e.src)
	status := reg.Status()
	if c.JSON {
		return writeJSON(g.out(), status)
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLANGUAGE")
	for _, s := range status {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.Language)
	}
	return tw.Flush()
}

// InfoCmd shows one translation's metadata.
type InfoCmd struct {
	ID   string `arg:"" help:"Translation identifier"`
	JSON bool   `help:"Print JSON"`
}

// TranslationInfo is the output of the info command.
type TranslationInfo struct {
	bible.Metadata
	Books  int `json:"books"`
	Verses int `json:"verses"`
}

func (c *InfoCmd) Run(g *Globals) error {
	l, err := g.loaded(c.ID)
	if err != nil {
		return err
	}
	md, _ := l.Metadata()
	info := TranslationInfo{Metadata: md}
	for _, b := range l.Books() {
		info.Books++
		for _, ch := range l.Chapters(b.Number) {
			info.Verses += l.VerseCount(b.Number, ch)
		}
	}
	if c.JSON {
		return writeJSON(g.out(), info)
	}

	w := g.out()
	fmt.Fprintf(w, "ID:          %s\n", info.Version)
	fmt.Fprintf(w, "Name:        %s\n", info.Name)
	fmt.Fprintf(w, "Language:    %s\n", info.Language)
	fmt.Fprintf(w, "Books:       %d\n", info.Books)
	fmt.Fprintf(w, "Verses:      %d\n", info.Verses)
	fmt.Fprintf(w, "Fingerprint: %s\n", info.Fingerprint)
	return nil
}

// BooksCmd lists the books of a translation.
type BooksCmd struct {
	ID string `arg:"" help:"Translation identifier"`
}

func (c *BooksCmd) Run(g *Globals) error {
	l, err := g.loaded(c.ID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tNAME\tCHAPTERS")
	for _, b := range l.Books() {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", b.Number, b.Name, b.ChapterCount)
	}
	return tw.Flush()
}

// ReadCmd prints the verses of a reference.
type ReadCmd struct {
	ID  string   `arg:"" help:"Translation identifier"`
	Ref []string `arg:"" help:"Reference, e.g. \"John 3:16-18\" or \"Psalm 23\""`
}

func (c *ReadCmd) Run(g *Globals) error {
	ref, err := bible.ParseRef(strings.Join(c.Ref, " "))
	if err != nil {
		return err
	}
	if ref.Chapter == 0 {
		return errors.NewValidation("ref", "reference must name a chapter: "+ref.String())
	}
	l, err := g.loaded(c.ID)
	if err != nil {
		return err
	}
	verses := l.Passage(ref)
	if len(verses) == 0 {
		return errors.NewNotFound("passage", ref.String())
	}
	w := g.out()
	fmt.Fprintln(w, ref.String())
	for _, v := range verses {
		fmt.Fprintf(w, "%3d  %s\n", v.Verse, v.Text)
	}
	return nil
}

// SearchCmd searches verse text.
type SearchCmd struct {
	ID    string   `arg:"" help:"Translation identifier"`
	Query []string `arg:"" help:"Text to find (case-insensitive)"`
	Limit int      `help:"Maximum results" default:"20"`
	JSON  bool     `help:"Print JSON"`
}

func (c *SearchCmd) Run(g *Globals) error {
	l, err := g.loaded(c.ID)
	if err != nil {
		return err
	}
	results := l.Search(strings.Join(c.Query, " "), c.Limit)
	if c.JSON {
		if results == nil {
			results = []bible.SearchResult{}
		}
		return writeJSON(g.out(), results)
	}

	books := make(map[int]string)
	for _, b := range l.Books() {
		books[b.Number] = b.Name
	}
	w := g.out()
	for _, r := range results {
		fmt.Fprintf(w, "%s %d:%d  %s\n", books[r.Book], r.Chapter, r.Verse, r.Text)
	}
	fmt.Fprintf(w, "%d result(s)\n", len(results))
	return nil
}

// BuildCmd imports a source Bible and writes its assets.
type BuildCmd struct {
	Format     string `arg:"" help:"Source format: sqlite (MySword/e-Sword), zefania, json"`
	Input      string `arg:"" help:"Source file" type:"existingfile"`
	ID         string `help:"Translation identifier (default: from the source)"`
	Name       string `help:"Display name (default: from the source)"`
	Lang       string `help:"Language code (default: from the source)"`
	Out        string `help:"Output asset directory" required:"" type:"path"`
	NoCompress bool   `name:"no-compress" help:"Write plain JSON instead of xz"`
}

func (c *BuildCmd) Run(g *Globals) error {
	format, err := importer.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	corpus, err := importer.File(format, c.Input, importer.Meta{ID: c.ID, Name: c.Name, Language: c.Lang})
	if err != nil {
		return err
	}
	w := assets.NewWriter(c.Out)
	w.Compress = !c.NoCompress
	entry, err := importer.Build(corpus, w)
	if err != nil {
		return err
	}
	logging.TranslationEvent(nil, "built", entry.ID, "out", c.Out, "books", len(corpus.Books))
	fmt.Fprintf(g.out(), "built %s (%s): %d books, %d verses -> %s, %s\n",
		entry.ID, entry.Name, len(corpus.Books), corpus.VerseCount(), entry.Corpus, entry.Index)
	return nil
}

// VerifyCmd checks every asset pair in a directory.
type VerifyCmd struct {
	Dir string   `arg:"" help:"Asset directory" type:"existingdir"`
	IDs []string `arg:"" optional:"" help:"Translations to verify (default: all)"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	src, err := assets.Dir(c.Dir)
	if err != nil {
		return err
	}
	ids := c.IDs
	if len(ids) == 0 {
		ids = src.IDs()
	}

	w := g.out()
	var errs []error
	for _, id := range ids {
		r, err := assets.Verify(src, id)
		if err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", bible.NormalizeID(id), err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s: %d books, %d verses, %d index entries, blake3 %s\n",
			r.ID, r.Books, r.Verses, r.IndexEntries, r.Fingerprint)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out(), "bibleloader version %s (sqlite: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bibleloader"),
		kong.Description("Offline Bible translation loader and API server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
