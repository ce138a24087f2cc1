package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	bierrors "github.com/FocuswithJustin/bibleloader/core/errors"
	"github.com/FocuswithJustin/bibleloader/internal/loader"
)

const sampleJSON = "../../internal/importer/testdata/kjv-sample.json"

func newGlobals() (*Globals, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Globals{Out: &buf, LogLevel: "error"}, &buf
}

func TestCLIParse(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"serve", "--port", "9090"}, "serve"},
		{[]string{"translations", "--json"}, "translations"},
		{[]string{"info", "kjv"}, "info <id>"},
		{[]string{"read", "kjv", "1", "John", "4:8"}, "read <id> <ref>"},
		{[]string{"search", "kjv", "we", "love", "--limit", "5"}, "search <id> <query>"},
		{[]string{"verify", "."}, "verify <dir>"},
		{[]string{"--log-level", "debug", "version"}, "version"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Name("bibleloader"), kong.Exit(func(int) {}))
			if err != nil {
				t.Fatal(err)
			}
			ctx, err := parser.Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.args, err)
			}
			if ctx.Command() != tt.command {
				t.Errorf("Command() = %q, want %q", ctx.Command(), tt.command)
			}
		})
	}
}

func TestCLIParseBindsArgs(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) {}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"--assets", "/tmp/a", "search", "kjv", "we", "love", "--limit", "5"}); err != nil {
		t.Fatal(err)
	}
	if cli.Assets != "/tmp/a" || cli.Search.ID != "kjv" || cli.Search.Limit != 5 {
		t.Errorf("parsed = %+v / %+v", cli.Globals, cli.Search)
	}
	if got := strings.Join(cli.Search.Query, " "); got != "we love" {
		t.Errorf("query = %q", got)
	}
}

func TestVersionCmd(t *testing.T) {
	g, out := newGlobals()
	if err := (&VersionCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "bibleloader version "+version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestTranslationsCmd(t *testing.T) {
	g, out := newGlobals()
	if err := (&TranslationsCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "KJV") || !strings.Contains(out.String(), "King James Version") {
		t.Errorf("output = %q", out.String())
	}

	g, out = newGlobals()
	if err := (&TranslationsCmd{JSON: true}).Run(g); err != nil {
		t.Fatal(err)
	}
	var status []loader.Status
	if err := json.Unmarshal(out.Bytes(), &status); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if len(status) != 1 || status[0].ID != "KJV" {
		t.Errorf("status = %+v", status)
	}
}

func TestInfoCmd(t *testing.T) {
	g, out := newGlobals()
	if err := (&InfoCmd{ID: "kjv", JSON: true}).Run(g); err != nil {
		t.Fatal(err)
	}
	var info TranslationInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != "KJV" || info.Books != 3 || info.Verses != 58 || info.Fingerprint == "" {
		t.Errorf("info = %+v", info)
	}

	g, _ = newGlobals()
	err := (&InfoCmd{ID: "niv"}).Run(g)
	if !errors.Is(err, bierrors.ErrConfig) {
		t.Errorf("unknown translation error = %v, want ErrConfig", err)
	}
}

func TestBooksCmd(t *testing.T) {
	g, out := newGlobals()
	if err := (&BooksCmd{ID: "kjv"}).Run(g); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Genesis", "Psalms", "1 John"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestReadCmd(t *testing.T) {
	g, out := newGlobals()
	if err := (&ReadCmd{ID: "kjv", Ref: []string{"1", "John", "4:8"}}).Run(g); err != nil {
		t.Fatal(err)
	}
	want := "1 John 4:8\n  8  He that loveth not knoweth not God; for God is love.\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	tests := []struct {
		ref  []string
		want error
	}{
		{[]string{"Genesis"}, bierrors.ErrInvalidInput},
		{[]string{"Nope", "1"}, bierrors.ErrInvalidInput},
		{[]string{"Exodus", "1"}, bierrors.ErrNotFound},
	}
	for _, tt := range tests {
		g, _ := newGlobals()
		if err := (&ReadCmd{ID: "kjv", Ref: tt.ref}).Run(g); !errors.Is(err, tt.want) {
			t.Errorf("read %v error = %v, want %v", tt.ref, err, tt.want)
		}
	}
}

func TestSearchCmd(t *testing.T) {
	g, out := newGlobals()
	if err := (&SearchCmd{ID: "kjv", Query: []string{"we", "love"}, Limit: 20}).Run(g); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "1 John 4:19") || lines[3] != "3 result(s)" {
		t.Errorf("output = %q", out.String())
	}

	g, out = newGlobals()
	if err := (&SearchCmd{ID: "kjv", Query: []string{"zzz"}, Limit: 20, JSON: true}).Run(g); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("empty JSON output = %q", out.String())
	}
}

func TestBuildAndVerifyCmd(t *testing.T) {
	dir := t.TempDir()
	g, out := newGlobals()
	build := &BuildCmd{Format: "json", Input: sampleJSON, ID: "kjvs", Name: "KJV Sample", Out: dir}
	if err := build.Run(g); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out.String(), "built KJVS (KJV Sample): 3 books, 58 verses") {
		t.Errorf("build output = %q", out.String())
	}
	for _, name := range []string{"manifest.json", "kjvs.corpus.json.xz", "kjvs.index.json.xz"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	g, out = newGlobals()
	if err := (&VerifyCmd{Dir: dir}).Run(g); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.HasPrefix(out.String(), "ok   KJVS: 3 books, 58 verses, 58 index entries") {
		t.Errorf("verify output = %q", out.String())
	}

	// The built directory serves reads through --assets.
	g, out = newGlobals()
	g.Assets = dir
	if err := (&ReadCmd{ID: "kjvs", Ref: []string{"Psalm", "23:1"}}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "The LORD is my shepherd") {
		t.Errorf("read output = %q", out.String())
	}
}

func TestBuildCmdPlain(t *testing.T) {
	dir := t.TempDir()
	g, _ := newGlobals()
	if err := (&BuildCmd{Format: "json", Input: sampleJSON, Out: dir, NoCompress: true}).Run(g); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "kjv.corpus.json")); err != nil {
		t.Errorf("plain corpus missing: %v", err)
	}
}

func TestBuildCmdErrors(t *testing.T) {
	g, _ := newGlobals()
	err := (&BuildCmd{Format: "osis", Input: sampleJSON, Out: t.TempDir()}).Run(g)
	if !errors.Is(err, bierrors.ErrUnsupported) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestVerifyCmdDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	g, _ := newGlobals()
	if err := (&BuildCmd{Format: "json", Input: sampleJSON, Out: dir, NoCompress: true}).Run(g); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "kjv.corpus.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, bytes.Replace(data, []byte("beginning"), []byte("BEGINNING"), 1), 0644); err != nil {
		t.Fatal(err)
	}

	g, out := newGlobals()
	if err := (&VerifyCmd{Dir: dir}).Run(g); err == nil {
		t.Error("verify should fail on a checksum mismatch")
	}
	if !strings.HasPrefix(out.String(), "FAIL KJV") {
		t.Errorf("verify output = %q", out.String())
	}
}

func TestSearchJSONScores(t *testing.T) {
	g, out := newGlobals()
	if err := (&SearchCmd{ID: "kjv", Query: []string{"the", "lord", "is", "my", "shepherd"}, Limit: 5, JSON: true}).Run(g); err != nil {
		t.Fatal(err)
	}
	var results []bible.SearchResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Book != 19 || results[0].Score != bible.ScorePrefix {
		t.Errorf("results = %+v", results)
	}
}
