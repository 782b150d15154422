package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/logging"
	"github.com/a3tai/mcp-pdf-forms/internal/manifest"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-forms/internal/pipeline"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

var errUsage = errors.New("usage")

// options holds the flags shared by every subcommand
type options struct {
	dir            string
	manifest       string
	config         string
	configFile     string
	out            string
	property       string
	propertyOut    string
	maxSizeMB      float64
	continueOnFail bool
	format         string
	logLevel       string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs one subcommand and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	command := args[0]
	opts := options{}
	flags := pflag.NewFlagSet("pdf-batch "+command, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.dir, "dir", ".", "Work directory; inputs and outputs must stay inside it")
	flags.StringVar(&opts.manifest, "manifest", "", "YAML batch manifest instead of file arguments")
	flags.StringVar(&opts.config, "config", "", "Configuration JSON applied to every item")
	flags.StringVar(&opts.configFile, "config-file", "", "File holding the configuration JSON")
	flags.StringVar(&opts.out, "out", "out", "Output directory for written PDFs")
	flags.StringVar(&opts.property, "property", pipeline.DefaultPropertyName, "Input binary property")
	flags.StringVar(&opts.propertyOut, "property-out", pipeline.DefaultPropertyName, "Output binary property")
	flags.Float64Var(&opts.maxSizeMB, "max-size", pipeline.DefaultMaxPDFSizeMB, "Maximum PDF size in megabytes")
	flags.BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Report failed items instead of aborting")
	flags.StringVar(&opts.format, "format", "json", "Output format: json, text")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	logger, err := logging.New(opts.logLevel, logging.FormatConsole)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	paths, err := security.NewPathValidator(opts.dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	c := &cli{opts: opts, paths: paths, logger: logger, stdout: stdout, stderr: stderr}

	switch command {
	case "text":
		err = c.text(ctx, flags.Args())
	case "fill", "create-field", "fields":
		var op pipeline.Operation
		op, err = pipeline.ParseOperation(command)
		if err == nil {
			err = c.batch(ctx, op, flags.Args())
		}
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", command)
		printUsage(stderr)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		printUsage(stderr)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "pdf-batch - fill, stamp and inspect PDF forms in batches")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  pdf-batch fill         --config JSON [flags] file.pdf...")
	fmt.Fprintln(w, "  pdf-batch create-field --config JSON [flags] file.pdf...")
	fmt.Fprintln(w, "  pdf-batch fields       [flags] file.pdf...")
	fmt.Fprintln(w, "  pdf-batch text         [flags] file.pdf...")
	fmt.Fprintln(w, "  pdf-batch <command>    --manifest batch.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "FLAGS:")
	fmt.Fprintln(w, "  --dir, --manifest, --config, --config-file, --out, --property, --property-out,")
	fmt.Fprintln(w, "  --max-size, --continue-on-fail, --format, --log-level")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, `  pdf-batch fill --config '[{"key":"name","value":"Ada","type":"textfield"}]' forms/*.pdf`)
	fmt.Fprintln(w, `  pdf-batch create-field --config '[{"value":"PAID","page":0,"options":{"x":50,"y":50}}]' invoice.pdf`)
	fmt.Fprintln(w, "  pdf-batch fields --format text w2.pdf")
}

type cli struct {
	opts   options
	paths  *security.PathValidator
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// itemSummary is printed per output record
type itemSummary struct {
	Item   int            `json:"item"`
	JSON   map[string]any `json:"json"`
	Output string         `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (c *cli) batch(ctx context.Context, op pipeline.Operation, files []string) error {
	items, defaults, outputs, continueOnFail, err := c.load(files)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(document.NewPDFCPULoader(false),
		pipeline.WithContinueOnFail(continueOnFail),
		pipeline.WithLogger(c.logger),
	)
	results, err := runner.Run(ctx, pipeline.NewStaticHost(items, defaults, c.paths.ReadFile), op, items)
	if err != nil {
		return err
	}

	property, _ := defaults[pipeline.ParamDataPropertyNameOut].(string)
	summaries := make([]itemSummary, 0, len(results))
	written := map[string]int{}
	for _, r := range results {
		s := itemSummary{Item: r.PairedItem, JSON: r.JSON}
		if msg, failed := r.Error(); failed {
			s.Error = msg
		} else if b := r.Binary[property]; b != nil && op != pipeline.OperationGetFormFields {
			target, err := c.target(outputs[r.PairedItem], r.PairedItem, b.FileName, written)
			if err != nil {
				return err
			}
			written[target] = r.PairedItem
			path, err := c.paths.WriteFile(target, b.Data)
			if err != nil {
				return fmt.Errorf("item %d: %w", r.PairedItem, err)
			}
			s.Output = path
		}
		summaries = append(summaries, s)
	}

	return c.print(op, summaries)
}

// target picks the output path of one item. Default paths that repeat an
// earlier item's get the item index as a prefix; repeated manifest outputs
// are an error.
func (c *cli) target(output string, item int, fileName string, written map[string]int) (string, error) {
	if output != "" {
		resolved, err := c.paths.Resolve(output)
		if err != nil {
			return "", fmt.Errorf("item %d: %w", item, err)
		}
		if prev, dup := written[resolved]; dup {
			return "", fmt.Errorf("item %d: output %s is already used by item %d", item, output, prev)
		}
		return resolved, nil
	}

	resolved, err := c.paths.Resolve(filepath.Join(c.opts.out, fileName))
	if err != nil {
		return "", fmt.Errorf("item %d: %w", item, err)
	}
	if _, dup := written[resolved]; !dup {
		return resolved, nil
	}
	resolved, err = c.paths.Resolve(filepath.Join(c.opts.out, fmt.Sprintf("%d-%s", item, fileName)))
	if err != nil {
		return "", fmt.Errorf("item %d: %w", item, err)
	}
	if prev, dup := written[resolved]; dup {
		return "", fmt.Errorf("item %d: output %s is already used by item %d", item, resolved, prev)
	}
	return resolved, nil
}

// load builds the batch from a manifest or from file arguments
func (c *cli) load(files []string) ([]pipeline.Item, map[string]any, []string, bool, error) {
	if c.opts.manifest != "" {
		m, err := manifest.Load(c.opts.manifest)
		if err != nil {
			return nil, nil, nil, false, err
		}
		items, err := m.Items(c.paths)
		if err != nil {
			return nil, nil, nil, false, err
		}
		defaults, err := m.Defaults()
		if err != nil {
			return nil, nil, nil, false, err
		}
		c.fillDefaults(defaults)
		continueOnFail := c.opts.continueOnFail
		if m.ContinueOnFail != nil {
			continueOnFail = *m.ContinueOnFail
		}
		return items, defaults, m.Outputs(), continueOnFail, nil
	}

	if len(files) == 0 {
		return nil, nil, nil, false, errUsage
	}

	items := make([]pipeline.Item, 0, len(files))
	for i, f := range files {
		item, err := manifest.ItemForFile(c.paths, c.opts.property, f)
		if err != nil {
			return nil, nil, nil, false, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}

	defaults := map[string]any{}
	config, err := c.configuration()
	if err != nil {
		return nil, nil, nil, false, err
	}
	if config != "" {
		defaults[pipeline.ParamConfigurationJSON] = config
	}
	c.fillDefaults(defaults)
	return items, defaults, make([]string, len(items)), c.opts.continueOnFail, nil
}

// fillDefaults adds flag values the manifest left unset
func (c *cli) fillDefaults(defaults map[string]any) {
	set := func(name string, v any) {
		if _, ok := defaults[name]; !ok {
			defaults[name] = v
		}
	}
	set(pipeline.ParamDataPropertyName, c.opts.property)
	set(pipeline.ParamDataPropertyNameOut, c.opts.propertyOut)
	set(pipeline.ParamMaxPDFSize, c.opts.maxSizeMB)
}

func (c *cli) configuration() (string, error) {
	if c.opts.configFile == "" {
		return c.opts.config, nil
	}
	data, err := os.ReadFile(c.opts.configFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *cli) print(op pipeline.Operation, summaries []itemSummary) error {
	if c.opts.format == "json" {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	for _, s := range summaries {
		switch {
		case s.Error != "":
			fmt.Fprintf(c.stdout, "item %d: FAILED: %s\n", s.Item, s.Error)
		case op == pipeline.OperationGetFormFields:
			fmt.Fprintf(c.stdout, "item %d: %v fields\n", s.Item, s.JSON["totalFields"])
			fields, _ := s.JSON["fields"].([]any)
			for _, f := range fields {
				entry, _ := f.(map[string]any)
				fmt.Fprintf(c.stdout, "  %-30v %v\n", entry["name"], entry["type"])
			}
		default:
			fmt.Fprintf(c.stdout, "item %d: wrote %s\n", s.Item, s.Output)
		}
	}
	return nil
}

func (c *cli) text(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return errUsage
	}

	type fileText struct {
		File  string              `json:"file"`
		Pages []document.PageText `json:"pages"`
	}
	out := make([]fileText, 0, len(files))
	limit := pipeline.MaxSizeBytes(c.opts.maxSizeMB)

	for _, f := range files {
		data, err := c.paths.ReadFile(ctx, f)
		if err != nil {
			return err
		}
		if int64(len(data)) > limit {
			return fmt.Errorf("%s exceeds maximum allowed size of %d bytes", f, limit)
		}
		pages, err := document.ExtractText(data)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, fileText{File: f, Pages: pages})
	}

	if c.opts.format == "json" {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}
	for _, ft := range out {
		for _, p := range ft.Pages {
			fmt.Fprintf(c.stdout, "== %s page %d ==\n%s\n", ft.File, p.Page, strings.TrimSpace(p.Text))
		}
	}
	return nil
}
