// Основной пакет richdoc. Запускает HTTP-сервер редактора или выполняет разовые операции
// над файлами документов: выгрузку, макросы и импорт HTML.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc"
	"github.com/aisa-it/richdoc/internal/richdoc/config"
	"github.com/aisa-it/richdoc/internal/richdoc/dao"
	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/slatejson"
	"github.com/aisa-it/richdoc/internal/richdoc/export"
	"github.com/aisa-it/richdoc/internal/richdoc/macro"
)

var version string = "DEV"

const usage = `Usage: richdoc [--trace] <command> [flags]

Commands:
  serve                               run the HTTP API
  export -format md|pdf|html|json -in doc.json [-out file]
  macro -script macro.lua [-in doc.json] [-out file]
  import-html -in page.html [-out doc.json]
`

// Пример запуска: richdoc --trace export -format pdf -in doc.json -out doc.pdf
func main() {
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cfg := config.ReadConfig()
	if *trace || cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "serve":
		err = serve(cfg, *trace)
	case "export":
		err = exportCmd(cfg, args)
	case "macro":
		err = macroCmd(cfg, args)
	case "import-html":
		err = importHTMLCmd(args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Command failed", "cmd", flag.Arg(0), "err", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config, trace bool) error {
	slog.Info("richdoc start", "version", version)

	db, err := dao.Open(cfg.DatabaseDSN, trace)
	if err != nil {
		return fmt.Errorf("init DB connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if cfg.IsPostgres() {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite пишет из одного соединения
		sqlDB.SetMaxOpenConns(1)
	}
	defer sqlDB.Close()

	return richdoc.Server(db, cfg, version)
}

func exportCmd(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "md", "Output format: md, pdf, html or json")
	in := fs.String("in", "", "Slate JSON document, - for stdin")
	out := fs.String("out", "", "Output file, stdout by default")
	title := fs.String("title", "", "Document title for html and pdf")
	font := fs.String("font", cfg.PDFFontPath, "TTF font for pdf")
	fs.Parse(args)

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	doc, err := readDocument(*in)
	if err != nil {
		return err
	}

	if *title == "" {
		*title = strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	}

	return writeOutput(*out, func(w io.Writer) error {
		return export.Export(doc, f, w, export.Options{
			Title:       *title,
			FontPath:    *font,
			FetchImages: cfg.PDFFetchImages,
		})
	})
}

func macroCmd(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("macro", flag.ExitOnError)
	script := fs.String("script", "", "Lua script")
	in := fs.String("in", "", "Slate JSON document, demo document by default")
	out := fs.String("out", "", "Output file, stdout by default")
	fs.Parse(args)

	if *script == "" {
		return errors.New("-script is required")
	}
	code, err := os.ReadFile(*script)
	if err != nil {
		return err
	}

	doc := editor.InitialDocument()
	if *in != "" {
		if doc, err = readDocument(*in); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MacroTimeout())
	defer cancel()

	res, err := macro.Run(ctx, engine.New(doc), string(code))
	if err != nil {
		return err
	}
	for _, msg := range res.Messages {
		slog.Info("Macro", "msg", msg)
	}
	slog.Info("Macro done", "commands", res.Commands)

	return writeOutput(*out, func(w io.Writer) error {
		return writeJSON(w, doc)
	})
}

func importHTMLCmd(args []string) error {
	fs := flag.NewFlagSet("import-html", flag.ExitOnError)
	in := fs.String("in", "", "HTML file, - for stdin")
	out := fs.String("out", "", "Output file, stdout by default")
	fs.Parse(args)

	if *in == "" {
		return errors.New("-in is required")
	}
	r, err := openInput(*in)
	if err != nil {
		return err
	}
	defer r.Close()

	doc, err := editor.ParseHTML(r)
	if err != nil {
		return err
	}
	return writeOutput(*out, func(w io.Writer) error {
		return writeJSON(w, doc)
	})
}

func readDocument(path string) (*edtypes.Document, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := slatejson.ParseJSON(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if errs := edtypes.Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("invalid document %s: %w", path, errors.Join(errs...))
	}
	return doc, engine.New(doc).Normalize()
}

func writeJSON(w io.Writer, doc *edtypes.Document) error {
	data, err := slatejson.Serialize(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func writeOutput(path string, fn func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
