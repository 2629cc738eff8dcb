// Command cstag tags Czech text from the command line.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/Mofl2328/languagetool"
	"github.com/Mofl2328/languagetool/fsa"
	"github.com/Mofl2328/languagetool/internal/logging"
	"github.com/Mofl2328/languagetool/stemmer"
	"github.com/Mofl2328/languagetool/tagging/cs"
)

// Globals holds the flags shared by every command.
type Globals struct {
	Resources string `name:"resources" short:"r" env:"LANGUAGETOOL_RESOURCES" help:"Resource root holding cs/czech.dict" type:"path"`
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level for stderr diagnostics"`

	out io.Writer
	in  io.Reader
}

func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

func (g *Globals) stdin() io.Reader {
	if g.in != nil {
		return g.in
	}
	return os.Stdin
}

// tagger opens a tagger on the configured resource root.
func (g *Globals) tagger() (*cs.Tagger, error) {
	tg := cs.New(g.Resources)
	start := time.Now()
	if err := tg.Load(); err != nil {
		return nil, err
	}
	logging.Debug("dictionary opened", "resources", tg.ResourceDir(), "duration_ms", time.Since(start).Milliseconds())
	return tg, nil
}

// CLI defines the command-line interface.
var CLI struct {
	Globals

	Tag    TagCmd    `cmd:"" help:"Tag text given as an argument or on stdin"`
	Lookup LookupCmd `cmd:"" help:"Show dictionary entries for a word form"`
	Info   InfoCmd   `cmd:"" help:"Describe the loaded dictionary"`
}

// TagCmd tags text, one token per output line.
type TagCmd struct {
	Text      []string `arg:"" optional:"" help:"Text to tag (default: read stdin)"`
	JSON      bool     `name:"json" help:"Emit JSON instead of tab-separated lines"`
	SkipSpace bool     `name:"skip-space" help:"Omit whitespace tokens from the output"`
}

func (c *TagCmd) Run(g *Globals) error {
	text := strings.Join(c.Text, " ")
	if len(c.Text) == 0 {
		b, err := io.ReadAll(g.stdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	tg, err := g.tagger()
	if err != nil {
		return err
	}
	defer tg.Close()

	readings, err := tg.TagText(text)
	if err != nil {
		return err
	}
	var kept []languagetool.AnalyzedTokenReadings
	for _, r := range readings {
		if c.SkipSpace && r.IsWhitespace() {
			continue
		}
		kept = append(kept, r)
	}

	if c.JSON {
		enc := json.NewEncoder(g.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(kept)
	}

	w := bufio.NewWriter(g.stdout())
	for _, r := range kept {
		fmt.Fprintf(w, "%d\t%q", r.StartPos, r.Token)
		for _, a := range r.Readings {
			if !a.HasPOSTag() {
				fmt.Fprint(w, "\t-")
				continue
			}
			fmt.Fprintf(w, "\t%s/%s", a.Lemma, a.POSTag)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// LookupCmd prints the raw entries for a form and its lowercase variant.
type LookupCmd struct {
	Word string `arg:"" help:"Word form to look up"`
}

func (c *LookupCmd) Run(g *Globals) error {
	tg, err := g.tagger()
	if err != nil {
		return err
	}
	defer tg.Close()

	forms := []string{c.Word}
	if lower := strings.ToLower(c.Word); lower != c.Word {
		forms = append(forms, lower)
	}
	out := g.stdout()
	found := false
	for _, form := range forms {
		entries, err := tg.Lookup(form)
		if err != nil {
			return err
		}
		for _, e := range entries {
			found = true
			fmt.Fprintf(out, "%s\t%s\t%s\n", form, e.Lemma, e.Tag)
		}
	}
	if !found {
		logging.Warn("word not in dictionary", "word", c.Word)
	}
	return nil
}

// InfoCmd prints the dictionary header and checksum.
type InfoCmd struct{}

func (c *InfoCmd) Run(g *Globals) error {
	tg, err := g.tagger()
	if err != nil {
		return err
	}
	defer tg.Close()

	d, err := tg.Dictionary()
	if err != nil {
		return err
	}
	sd, ok := d.(*stemmer.Dictionary)
	if !ok {
		return fmt.Errorf("dictionary %T carries no header", d)
	}
	info := sd.Info()
	out := g.stdout()
	fmt.Fprintf(out, "path:      %s\n", info.Path)
	fmt.Fprintf(out, "encoding:  %s\n", info.Encoding)
	fmt.Fprintf(out, "separator: %q\n", info.Separator)
	fmt.Fprintf(out, "prefixes:  %t\n", info.Flags&fsa.FlagPrefixes != 0)
	fmt.Fprintf(out, "infixes:   %t\n", info.Flags&fsa.FlagInfixes != 0)
	fmt.Fprintf(out, "nodes:     %d\n", info.Nodes)
	fmt.Fprintf(out, "arcs:      %d\n", info.Arcs)
	fmt.Fprintf(out, "mapped:    %t\n", info.Mapped)
	fmt.Fprintf(out, "blake3:    %s\n", info.Checksum)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("cstag"),
		kong.Description("Czech part-of-speech tagger"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	level, err := logging.ParseLevel(CLI.LogLevel)
	ctx.FatalIfErrorf(err)
	logging.InitLogger(level, logging.FormatText, os.Stderr)

	err = ctx.Run(&CLI.Globals)
	if err != nil {
		logging.Error("command failed", "command", ctx.Command(), "error", err)
	}
	ctx.FatalIfErrorf(err)
}
