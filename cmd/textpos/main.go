// Command textpos prints the positioned text of PDF pages.
//
// Usage:
//
//	textpos [flags] file.pdf...
//
// Flags:
//
//	-p 1-3,5     pages to extract (default all)
//	-format f    auto, text, json, table or html (default auto)
//	-ops         list each page's content operations before its items
//	-strict      drop strings that are not valid UTF-8
//	-nfc         normalise item text to Unicode NFC
//	-workers n   pages processed at once (default GOMAXPROCS)
//	-v           report skipped operations on stderr
//
// With -format auto the output is a table on a terminal and the plain
// listing otherwise. -ops always writes the plain listing and cannot be
// combined with another -format.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/tsawler/textpos"
	"github.com/tsawler/textpos/placement"
	"github.com/tsawler/textpos/reader"
	"github.com/tsawler/textpos/render"
)

type options struct {
	pages   []int
	format  string
	ops     bool
	strict  bool
	nfc     bool
	workers int
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("textpos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: textpos [flags] file.pdf...")
		fs.PrintDefaults()
	}

	var opts options
	pageList := fs.String("p", "", "pages to extract, e.g. 1-3,5 (default all)")
	fs.StringVar(&opts.format, "format", "auto", "output format: auto, text, json, table or html")
	fs.BoolVar(&opts.ops, "ops", false, "list content operations before each page's items (text output only)")
	fs.BoolVar(&opts.strict, "strict", false, "drop strings that are not valid UTF-8")
	fs.BoolVar(&opts.nfc, "nfc", false, "normalise text to Unicode NFC")
	fs.IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "pages processed at once")
	fs.BoolVar(&opts.verbose, "v", false, "report skipped operations on stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var err error
	if opts.pages, err = parsePageList(*pageList); err != nil {
		fmt.Fprintf(stderr, "textpos: -p: %v\n", err)
		return 2
	}

	format, err := chooseFormat(opts.format, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "textpos: %v\n", err)
		return 2
	}
	if opts.ops {
		if opts.format != "auto" && format != render.Text {
			fmt.Fprintf(stderr, "textpos: -ops writes text and cannot be used with -format %s\n", opts.format)
			return 2
		}
		format = render.Text
	}

	logger := log.New(stderr, "textpos: ", 0)
	status := 0
	for _, path := range fs.Args() {
		if err := extractFile(ctx, path, format, opts, stdout, logger); err != nil {
			logger.Printf("%s: %v", path, err)
			status = 1
		}
	}
	return status
}

// chooseFormat resolves "auto" to a table on a terminal and text
// otherwise.
func chooseFormat(name string, stdout io.Writer) (render.Format, error) {
	if name != "auto" {
		return render.ParseFormat(name)
	}
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return render.Table, nil
	}
	return render.Text, nil
}

func extractFile(ctx context.Context, path string, format render.Format, opts options, stdout io.Writer, logger *log.Logger) error {
	r, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	ext := textpos.FromReader(r).Workers(opts.workers)
	if len(opts.pages) > 0 {
		ext = ext.Pages(opts.pages...)
	}
	if opts.strict {
		ext = ext.Strict()
	}
	if opts.nfc {
		ext = ext.Normalize()
	}
	if opts.verbose {
		label := color.New(color.FgYellow).SprintFunc()
		ext = ext.Observe(func(s placement.Skip) {
			logger.Printf("%s %s: %s", label("skipped"), path, s)
		})
	}

	pages, err := ext.Items(ctx)
	if err != nil {
		return err
	}

	if !opts.ops {
		return render.Write(stdout, format, pages)
	}

	// The listing layout interleaves operations and items page by page.
	for _, p := range pages {
		ops, err := ext.Operations(ctx, p.Page)
		if err != nil {
			return err
		}
		render.WritePageHeader(stdout, p.Page)
		if err := render.Operations(stdout, ops); err != nil {
			return err
		}
		if err := render.WriteItems(stdout, p.Items); err != nil {
			return err
		}
	}
	return nil
}
