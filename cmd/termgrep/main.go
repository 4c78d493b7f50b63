// Command termgrep prints the terms of a dictionary file that match a query automaton.
//
//	termgrep -terms words.txt -mode fuzzy -distance 1 food
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	u "github.com/araddon/gou"

	automaton "github.com/geange/termautomaton"
	"github.com/geange/termautomaton/internal/termdict"
)

var (
	termsFile      *string = flag.String("terms", "", "term file, one term per line (default stdin)")
	mode           *string = flag.String("mode", "regexp", "query mode [regexp|fuzzy|wildcard|prefix]")
	distance       *int    = flag.Int("distance", 1, "edit distance for fuzzy queries [0-2]")
	transpositions *bool   = flag.Bool("transpositions", true, "count a transposition as one edit in fuzzy queries")
	floor          *bool   = flag.Bool("floor", false, "print the greatest accepted term <= the -at term instead of matching")
	at             *string = flag.String("at", "", "input term for -floor")
	workLimit      *int    = flag.Int("worklimit", automaton.DEFAULT_DETERMINIZE_WORK_LIMIT, "determinize work limit")
	logLevel       *string = flag.String("loglevel", "info", "log level [debug|info|warn|error]")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: termgrep [flags] query\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	u.SetupLogging(*logLevel)
	u.SetColorIfTerminal()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), os.Stdout); err != nil {
		u.Errorf("termgrep: %v", err)
		os.Exit(1)
	}
}

func run(query string, out io.Writer) error {
	a, err := buildQuery(*mode, query)
	if err != nil {
		return err
	}
	compiled, err := automaton.NewCompiledAutomaton(a, automaton.WithCompileWorkLimit(*workLimit))
	if err != nil {
		return fmt.Errorf("compile %q: %w", query, err)
	}
	u.Infof("query %q compiled as %s", query, compiled.Type)

	w := bufio.NewWriter(out)
	defer w.Flush()

	if *floor {
		term, ok := compiled.Floor([]byte(*at), nil)
		if !ok {
			return fmt.Errorf("no accepted term <= %q", *at)
		}
		_, err = fmt.Fprintf(w, "%s\n", term)
		return err
	}

	dict, err := loadTerms(*termsFile)
	if err != nil {
		return err
	}
	te, err := compiled.GetTermsEnum(dict.Iterator())
	if err != nil {
		return err
	}
	matched := 0
	for {
		term, err := te.Next()
		if err != nil {
			return err
		}
		if term == nil {
			break
		}
		matched++
		if _, err := fmt.Fprintf(w, "%s\n", term); err != nil {
			return err
		}
	}
	u.Infof("%d of %d terms matched", matched, dict.Len())
	return nil
}

func buildQuery(mode, query string) (*automaton.Automaton, error) {
	switch mode {
	case "regexp":
		re, err := automaton.NewRegExp(query)
		if err != nil {
			return nil, err
		}
		return re.ToAutomaton(automaton.WithDeterminizeWorkLimit(*workLimit))
	case "fuzzy":
		return automaton.NewLevenshteinAutomata(query, *transpositions).ToAutomaton(*distance)
	case "wildcard":
		return automaton.MakeWildcard(query), nil
	case "prefix":
		return automaton.MakePrefix(query), nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

func loadTerms(path string) (*termdict.Dictionary, error) {
	if path == "" {
		return termdict.Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return termdict.Load(f)
}
