// Program fplay disassembles FRS00PLAY song data into an assembler listing
// that rebuilds the input file.
//
// The command grammar is read from vcmds.json in the current directory, or
// vcmds_long.json with -l, unless -g names a file.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pborman/getopt"

	"fplay/grammar"
	"fplay/listing"
	"fplay/parse"
	"fplay/verify"
)

const (
	shortGrammar = "vcmds.json"
	longGrammar  = "vcmds_long.json"
)

func exit(v ...interface{}) {
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(1)
}
func exitf(format string, v ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(1)
}

func main() {
	debug := getopt.BoolLong("debug", 'd', "prefix each line with its offset from the base")
	force := getopt.BoolLong("force", 'f', "do not check the signature")
	long := getopt.BoolLong("long", 'l', "use the long command grammar ("+longGrammar+")")
	grammarPath := getopt.StringLong("grammar", 'g', "", "read the command grammar from FILE", "FILE")
	outputPath := getopt.StringLong("output", 'o', "", "write the listing to FILE", "FILE")
	verbose := getopt.BoolLong("verbose", 'v', "print a decode summary on stderr")
	help := getopt.BoolLong("help", 'h', "display this help")
	getopt.SetParameters("SONG.DAT")
	getopt.Parse()

	if *help {
		getopt.PrintUsage(os.Stdout)
		return
	}
	args := getopt.Args()
	if len(args) != 1 {
		getopt.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	path := *grammarPath
	if path == "" {
		path = shortGrammar
		if *long {
			path = longGrammar
		}
	}
	g, err := grammar.Load(path)
	if err != nil {
		exit(err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Grammar: %s (%d commands)\n", path, len(g.Commands()))
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		exit(err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Disassembling: %s (%d bytes)\n", args[0], len(raw))
	}

	p, err := parse.Parse(raw, g, parse.Options{Force: *force})
	if err != nil {
		exitf("%s: %v", args[0], err)
	}
	if err := verify.All(p); err != nil {
		exitf("%s: %v", args[0], err)
	}
	if *verbose {
		summarize(p)
	}

	opts := listing.Options{Debug: *debug}
	if *outputPath == "" {
		if err := listing.Write(os.Stdout, p, opts); err != nil {
			exitf("%s: %v", args[0], err)
		}
		return
	}
	out, err := listing.Render(p, opts)
	if err != nil {
		exitf("%s: %v", args[0], err)
	}
	if err := os.WriteFile(*outputPath, out, 0644); err != nil {
		exit(err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Wrote: %s\n", *outputPath)
	}
}

func summarize(p *parse.ParsedImage) {
	counts := map[string]int{}
	p.Map.Each(func(_ int, obj parse.Object) {
		name := obj.Name()
		if _, isEvent := obj.(*parse.Event); isEvent {
			name = "event"
		}
		counts[name]++
	})
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "  Base: $%04X, End: $%04X, Boundaries: %d\n",
		p.Image.Base, p.Image.End(), p.Bounds.Len())
	fmt.Fprintf(os.Stderr, "  Tables: fm $%04X, notelen $%04X, vol $%04X, pitch $%04X, song $%04X, drum $%04X\n",
		p.Header.FMTable, p.Header.NoteLenTable, p.Header.VolTable,
		p.Header.PitchTable, p.Header.SongTable, p.Header.DrumTable)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s: %d\n", name, counts[name])
	}
}
