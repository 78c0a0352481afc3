package main

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/mdsync"
	"pkt.systems/version"
)

const defaultWidth = 80

func init() {
	version.SetDefaultModule("pkt.systems/mdsync")
}

func main() {
	var (
		fromName      string
		toName        string
		outPath       string
		selector      string
		wrapFlag      string
		emphasis      string
		noFrontMatter bool
		traceLevel    string
	)

	flags := pflag.NewFlagSet("mdsync", pflag.ExitOnError)
	flags.StringVarP(&fromName, "from", "f", "", "Input format: md|html|hast (default: from input extension, else md)")
	flags.StringVarP(&toName, "to", "t", "", "Output format: md|html|hast (default: html for md input, md otherwise)")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.StringVarP(&selector, "selector", "s", "", "CSS selector of the editable element in HTML input")
	flags.StringVarP(&wrapFlag, "wrap", "w", "0", "Wrap markdown output at N columns, or auto for the terminal width")
	flags.StringVar(&emphasis, "emphasis", "*", "Marker for emphasis in markdown output: * or _")
	flags.BoolVar(&noFrontMatter, "no-front-matter", false, "Treat leading front matter as markdown")
	flags.StringVar(&traceLevel, "trace", "", "Trace to stderr at level: error|info|debug")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: mdsync [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, input is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	args := flags.Args()
	from, to, err := resolveFormats(fromName, toName, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	width, err := resolveWrap(wrapFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --wrap %q: %v\n", wrapFlag, err)
		os.Exit(2)
	}
	if emphasis != "*" && emphasis != "_" {
		fmt.Fprintf(os.Stderr, "invalid --emphasis %q: expected * or _\n", emphasis)
		os.Exit(2)
	}
	opts := []mdsync.Option{
		mdsync.WithFrontMatter(!noFrontMatter),
		mdsync.WithWrap(width),
		mdsync.WithEmphasisMarker(emphasis[0]),
	}
	if traceLevel != "" {
		level, err := resolveTraceLevel(traceLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --trace %q: %v\n", traceLevel, err)
			os.Exit(2)
		}
		tr := gologadapter.New()
		tr.SetTraceLevel(level)
		opts = append(opts, mdsync.WithTracer(tr))
	}

	reader, err := readInputs(args, from, selector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	writer, closeOut, err := createOutput(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open output: %v\n", err)
		os.Exit(1)
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	if err := mdsync.Convert(mdsync.ConvertRequest{
		Reader:   reader,
		Writer:   writer,
		From:     from,
		To:       to,
		Selector: selector,
		Options:  opts,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		os.Exit(1)
	}
}

// resolveFormats fills in formats the user left out. The input format
// follows the extension of the first input; the output defaults to html
// for markdown and to markdown for everything else.
func resolveFormats(fromName, toName string, args []string) (mdsync.Format, mdsync.Format, error) {
	from := mdsync.FormatMarkdown
	if fromName != "" {
		f, err := mdsync.ParseFormat(fromName)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --from: %w", err)
		}
		from = f
	} else if len(args) > 0 {
		from = formatFromPath(args[0])
	}
	if toName == "" {
		if from == mdsync.FormatMarkdown {
			return from, mdsync.FormatHTML, nil
		}
		return from, mdsync.FormatMarkdown, nil
	}
	to, err := mdsync.ParseFormat(toName)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --to: %w", err)
	}
	return from, to, nil
}

func formatFromPath(path string) mdsync.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return mdsync.FormatHTML
	case ".json", ".hast":
		return mdsync.FormatHast
	}
	return mdsync.FormatMarkdown
}

func resolveWrap(value string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "off", "no":
		return 0, nil
	case "auto":
		return terminalWidth(defaultWidth), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("expected a column count or auto")
	}
	return n, nil
}

func resolveTraceLevel(value string) (tracing.TraceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return tracing.LevelError, nil
	case "info":
		return tracing.LevelInfo, nil
	case "debug":
		return tracing.LevelDebug, nil
	}
	return tracing.LevelError, fmt.Errorf("expected error|info|debug")
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// readInputs loads the named files, or stdin when there are none.
// Markdown files are joined with a blank line so that no paragraph runs
// from one file into the next. HTML and hast inputs are whole documents,
// so they, and any run with a selector, take exactly one file.
func readInputs(args []string, from mdsync.Format, selector string) (io.Reader, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}
	if len(args) > 1 && (from != mdsync.FormatMarkdown || selector != "") {
		return nil, fmt.Errorf("%d inputs given: only markdown without --selector can be joined", len(args))
	}
	docs := make([][]byte, 0, len(args))
	for _, arg := range args {
		path, err := inputPath(arg)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if len(args) > 1 {
			data = bytes.TrimRight(data, "\r\n")
		}
		docs = append(docs, data)
	}
	return bytes.NewReader(bytes.Join(docs, []byte("\n\n"))), nil
}

// inputPath accepts a plain path or a file:// URL.
func inputPath(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(arg)
	if err != nil || u.Scheme == "" {
		return expandPath(arg), nil
	}
	if !strings.EqualFold(u.Scheme, "file") {
		return "", fmt.Errorf("unsupported input %q: only files and stdin", arg)
	}
	path := u.Path
	if path == "" {
		path = u.Host
	}
	return expandPath(path), nil
}

func createOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// expandPath resolves a leading ~ to the home directory.
func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
