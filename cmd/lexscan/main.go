package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"lexscan/pkg/auth"
	"lexscan/pkg/config"
	"lexscan/pkg/diag"
	"lexscan/pkg/lexer"
	"lexscan/pkg/printer"
	"lexscan/pkg/report"
	"lexscan/pkg/server"
)

const version = "0.3.0"

// errLint signals that lint found diagnostics; they are already printed.
var errLint = errors.New("lexical errors found")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(2)
	}
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errLint) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	command := args[0]
	switch command {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "lexscan v%s\n", version)
		return nil
	case "--help", "-h", "help":
		printUsage(stdout)
		return nil
	case "scan":
		return runScan(cfg, args[1:], stdout)
	case "lint":
		return runLint(cfg, args[1:], stdout)
	case "serve":
		return runServe(cfg, args[1:], stderr)
	case "token":
		return runToken(cfg, args[1:], stdout)
	}

	// A bare path scans the file.
	if !strings.HasPrefix(command, "-") {
		return runScan(cfg, args, stdout)
	}
	printUsage(stderr)
	return fmt.Errorf("unknown command: %s", command)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "lexscan v"+version)
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  lexscan <file>                                      Print the tokens of a file")
	fmt.Fprintln(w, "  lexscan scan [-format f] [-directives] <file>       Print tokens as text, table or json")
	fmt.Fprintln(w, "  lexscan lint [-mail-to addr] [-directives] <file>   Report unrecognized input")
	fmt.Fprintln(w, "  lexscan serve [-addr :8080]                         Serve /scan and /ws")
	fmt.Fprintln(w, "  lexscan token [-sub name] [-ttl 24h]                Issue a bearer token for serve")
	fmt.Fprintln(w, "  lexscan version                                     Show version information")
	fmt.Fprintln(w, "\nConfiguration is read from the environment and ./.env")
}

// readSource reads the whole file once so it can be scanned, digested and
// quoted back in diagnostics.
func readSource(fs *flag.FlagSet) (string, []byte, error) {
	if fs.NArg() != 1 {
		return "", nil, fmt.Errorf("%s: expected exactly one file argument", fs.Name())
	}
	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, src, nil
}

func runScan(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	defaultFormat := cfg.Format
	if defaultFormat == "" {
		defaultFormat = string(printer.Text)
		if f, ok := stdout.(*os.File); ok && isTerminal(f) {
			defaultFormat = string(printer.Table)
		}
	}
	format := fs.String("format", defaultFormat, "output format: text, table or json")
	directives := fs.Bool("directives", false, "scan #include and friends as single directive tokens")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := printer.ParseFormat(*format)
	if err != nil {
		return err
	}
	path, src, err := readSource(fs)
	if err != nil {
		return err
	}
	toks, err := newScanner(*directives).Scan(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return printer.Print(stdout, f, path, src, toks)
}

func runLint(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	mailTo := fs.String("mail-to", "", "mail the report to this address")
	directives := fs.Bool("directives", false, "scan #include and friends as single directive tokens")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, src, err := readSource(fs)
	if err != nil {
		return err
	}
	toks, err := newScanner(*directives).Scan(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	bag := diag.Collect(path, toks)
	if err := bag.Emit(stdout, lines); err != nil {
		return err
	}
	if *mailTo != "" {
		m, err := report.NewMailer(cfg)
		if err != nil {
			return err
		}
		if err := m.Send(*mailTo, bag, lines); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "report sent to %s\n", *mailTo)
	}
	if bag.HasErrors() {
		return errLint
	}
	return nil
}

func newScanner(directives bool) *lexer.Scanner {
	if directives {
		return lexer.New(lexer.WithDirectives())
	}
	return lexer.New()
}

func runServe(cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(stderr, "warning: LEXSCAN_JWT_SECRET is not set, authentication disabled")
	}
	srv := server.New(server.Options{
		JWTSecret: cfg.JWTSecret,
		MaxBody:   cfg.MaxBody,
		Log:       stderr,
	})
	return srv.ListenAndServe(*addr)
}

func runToken(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	sub := fs.String("sub", "lexscan-client", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("LEXSCAN_JWT_SECRET must be set to issue tokens")
	}
	tok, err := auth.SignToken(*sub, cfg.JWTSecret, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, tok)
	return nil
}
