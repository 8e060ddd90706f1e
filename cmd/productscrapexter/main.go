// cmd/productscrapexter/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/valpere/ProductScrapexter/internal/config"
	"github.com/valpere/ProductScrapexter/internal/errors"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// errBrowserStart marks a failure to launch the headless browser.
var errBrowserStart = stderrors.New("browser start-up failed")

func newErrorService(verbose bool) *errors.Service {
	service := errors.NewService().WithVerbose(verbose)
	service.RegisterExitCode(config.ErrInvalidConfig, errors.ExitConfig, "Configuration Error")
	service.RegisterExitCode(errConfigLoad, errors.ExitConfig, "Configuration Error")
	service.RegisterExitCode(errBrowserStart, errors.ExitBrowser, "Browser Error")
	return service
}

// errConfigLoad wraps any failure to read or parse the configuration file.
var errConfigLoad = stderrors.New("configuration could not be loaded")

func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		if stderrors.Is(err, config.ErrInvalidConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errConfigLoad, err)
	}
	return cfg, nil
}

// exitOnError prints err for the terminal and exits with its mapped code.
func exitOnError(service *errors.Service, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(os.Stderr, service.FormatErrorForCLI(err))
	os.Exit(service.GetExitCode(err))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCommand(configFile string) {
	verbose := hasFlag("-v") || hasFlag("--verbose")
	service := newErrorService(verbose)

	ctx, stop := signalContext()
	defer stop()

	err := runScrape(ctx, configFile, verbose, service)
	stop()
	exitOnError(service, err)
}

func uploadCommand(configFile string) {
	verbose := hasFlag("-v") || hasFlag("--verbose")
	service := newErrorService(verbose)

	ctx, stop := signalContext()
	defer stop()

	err := runUpload(ctx, configFile, verbose, service)
	stop()
	exitOnError(service, err)
}

func validateCommand(configFile string) {
	verbose := hasFlag("-v") || hasFlag("--verbose")
	service := newErrorService(verbose)

	summary, err := executeValidation(configFile, verbose)
	exitOnError(service, err)

	fmt.Print(summary)
	fmt.Printf("✓ Configuration file '%s' is valid\n", configFile)
}

// executeValidation loads and validates configFile, returning a summary when verbose.
func executeValidation(configFile string, verbose bool) (string, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return "", err
	}
	if !verbose {
		return "", nil
	}

	summary := fmt.Sprintf("Configuration loaded: %s\n", cfg.Name)
	for _, cat := range cfg.Categories {
		summary += fmt.Sprintf("  Category %s: %s\n", cat.Name, cat.URL)
	}
	if cfg.MongoDB.Enabled() {
		summary += fmt.Sprintf("  MongoDB: %s (%s, %s)\n", cfg.MongoDB.Database, cfg.MongoDB.CollectionUnique, cfg.MongoDB.CollectionAll)
	} else {
		summary += "  MongoDB: disabled\n"
	}
	return summary, nil
}

func generateTemplate() (string, error) {
	data, err := config.Template()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// hasFlag checks if a flag is present in command line arguments
func hasFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

func requireConfigArg(command string) string {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Error: config file required\n")
		fmt.Fprintf(os.Stderr, "Usage: productscrapexter %s <config.yaml>\n", command)
		os.Exit(errors.ExitGeneral)
	}
	return os.Args[2]
}

// main function handles CLI arguments and routes to appropriate functions
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(errors.ExitGeneral)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCommand(requireConfigArg(command))

	case "upload":
		uploadCommand(requireConfigArg(command))

	case "validate":
		validateCommand(requireConfigArg(command))

	case "template":
		template, err := generateTemplate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(errors.ExitGeneral)
		}
		fmt.Print(template)

	case "version", "--version":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(errors.ExitGeneral)
	}
}

// printUsage displays help information
func printUsage() {
	fmt.Println("ProductScrapexter - Product catalogue extraction")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  productscrapexter run <config.yaml>        Crawl, extract, export and persist products")
	fmt.Println("  productscrapexter upload <config.yaml>     Upload previously exported CSV files")
	fmt.Println("  productscrapexter validate <config.yaml>   Validate configuration file")
	fmt.Println("  productscrapexter template                 Print a default configuration")
	fmt.Println("  productscrapexter version                  Show version information")
	fmt.Println("  productscrapexter help                     Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose   Debug logging and technical error details")
}

func printVersion() {
	fmt.Printf("ProductScrapexter %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}
