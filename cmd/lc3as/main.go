package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/lookbusy1344/lc3-emulator/config"
	"github.com/lookbusy1344/lc3-emulator/encoder"
	"github.com/lookbusy1344/lc3-emulator/objfile"
	"github.com/lookbusy1344/lc3-emulator/parser"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		outputFile  = flag.String("o", "", "Object file output path (default from config, out.obj)")
		dumpTokens  = flag.Bool("dump-tokens", false, "Dump the token sequence and exit")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump the symbol table and exit")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("LC-3 Assembler %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Output path: -o flag, then second positional argument, then config
	outPath := *outputFile
	if outPath == "" && flag.NArg() > 1 {
		outPath = flag.Arg(1)
	}
	if outPath == "" {
		outPath = cfg.Assembler.OutputFile
	}

	asmFile := flag.Arg(0)
	source, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source file: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Assembling: %s\n", asmFile)
	}

	// Scan
	lexer := parser.NewLexer(string(source), asmFile)
	tokens := lexer.Tokenize()
	errors := &parser.ErrorList{}
	errors.Merge(lexer.Errors())

	if *dumpTokens {
		spew.Fdump(os.Stdout, tokens)
		os.Exit(0)
	}

	// First pass: addresses and labels
	symbols, pass1Errors := parser.CollectSymbols(tokens, asmFile)
	errors.Merge(pass1Errors)

	if *dumpSymbols {
		if err := dumpSymbolTable(symbols, *symbolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Second pass: encoding
	enc := encoder.New(tokens, symbols, asmFile)
	img, encodeErrors := enc.Encode()
	errors.Merge(encodeErrors)

	// No object file is produced if anything was reported
	if errors.HasErrors() {
		for _, e := range errors.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		fmt.Fprintf(os.Stderr, "%d error(s), no object file written\n", len(errors.Errors))
		os.Exit(1)
	}

	if err := objfile.WriteFile(outPath, img); err != nil {
		// Don't leave a partial object file behind
		_ = os.Remove(outPath)
		fmt.Fprintf(os.Stderr, "Error writing object file: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Origin: x%04X\n", img.Origin)
		fmt.Printf("Words: %d\n", len(img.Words))
		fmt.Printf("Labels: %d\n", symbols.Len())
		fmt.Printf("Object file: %s\n", outPath)
	}
}

func printHelp() {
	fmt.Printf(`LC-3 Assembler %s

Usage: lc3as [options] <source-file> [object-file]

Options:
  -help              Show this help message
  -version           Show version information
  -o FILE            Object file output path (default: out.obj)
  -dump-tokens       Dump the token sequence and exit
  -dump-symbols      Dump the symbol table and exit
  -symbols-file FILE Symbol dump output file (default: stdout)
  -verbose           Enable verbose output

Examples:
  lc3as program.asm
  lc3as program.asm program.obj
  lc3as -o program.obj program.asm
  lc3as -dump-symbols program.asm
`, Version)
}

// dumpSymbolTable outputs the symbol table in a readable format
func dumpSymbolTable(st *parser.SymbolTable, filename string) (err error) {
	writer := os.Stdout
	if filename != "" {
		writer, err = os.Create(filename) // #nosec G304 -- user-specified symbol output path
		if err != nil {
			return fmt.Errorf("failed to create symbol file: %w", err)
		}
		defer func() {
			if closeErr := writer.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close symbol file: %w", closeErr)
			}
		}()
	}

	symbols := st.All()
	if len(symbols) == 0 {
		_, _ = fmt.Fprintln(writer, "No labels defined")
		return nil
	}

	_, _ = fmt.Fprintln(writer, "Symbol Table")
	_, _ = fmt.Fprintln(writer, "============")
	_, _ = fmt.Fprintf(writer, "%-20s %-8s %s\n", "Name", "Offset", "Defined at")
	for _, sym := range symbols {
		_, _ = fmt.Fprintf(writer, "%-20s x%04X   %s\n", sym.Name, sym.Offset, sym.Pos)
	}
	_, _ = fmt.Fprintf(writer, "\nTotal labels: %d\n", len(symbols))

	return nil
}
