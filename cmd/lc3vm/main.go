package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/lc3-emulator/config"
	"github.com/lookbusy1344/lc3-emulator/objfile"
	"github.com/lookbusy1344/lc3-emulator/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	// All file handles are released by deferred closes inside run, so the
	// exit must happen out here
	os.Exit(run())
}

func run() int {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum instructions before halt (default from config)")
		enableTrace = flag.Bool("trace", false, "Enable execution trace")
		traceFile   = flag.String("trace-file", "", "Trace output file (default from config, trace.log)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("LC-3 Virtual Machine %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		return 0
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	objFile := flag.Arg(0)
	img, err := objfile.ReadFile(objFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading object file: %v\n", err)
		return 1
	}

	machine := vm.NewVM()
	machine.MaxCycles = cfg.Execution.MaxCycles
	if *maxCycles > 0 {
		machine.MaxCycles = *maxCycles
	}

	if err := machine.LoadImage(img); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	if *verboseMode {
		fmt.Printf("Loaded %d words at x%04X\n", len(img.Words), img.Origin)
	}

	if *enableTrace || cfg.Execution.EnableTrace {
		tracePath := *traceFile
		if tracePath == "" {
			tracePath = cfg.Execution.TraceFile
		}

		traceWriter, err := os.Create(tracePath) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			return 1
		}
		defer func() {
			if err := traceWriter.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close trace file: %v\n", err)
			}
		}()

		machine.Trace = vm.NewExecutionTrace(traceWriter)

		if *verboseMode {
			fmt.Printf("Execution trace enabled: %s\n", tracePath)
		}
	}

	runErr := machine.Run()

	if machine.Trace != nil {
		if err := machine.Trace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing execution trace: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", runErr)
		return 1
	}

	if *verboseMode {
		fmt.Printf("\nInstructions executed: %d\n", machine.Instructions)
	}
	return 0
}

func printHelp() {
	fmt.Printf(`LC-3 Virtual Machine %s

Usage: lc3vm [options] <object-file>

Options:
  -help              Show this help message
  -version           Show version information
  -max-cycles N      Maximum instructions before halt (default: 1000000)
  -trace             Enable execution trace
  -trace-file FILE   Trace output file (default: trace.log)
  -verbose           Enable verbose output

Examples:
  lc3vm program.obj
  lc3vm -trace -trace-file run.log program.obj
`, Version)
}
