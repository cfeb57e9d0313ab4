package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/mf2"
	"github.com/starford/raido/internal/micropub"
	"github.com/starford/raido/internal/render"
	pkgconfig "github.com/starford/raido/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// renderOptions are the render subcommand's flags.
type renderOptions struct {
	// wrap overrides micropub.wrap_root when non-nil.
	wrap   *bool
	asJSON bool
}

// runRender classifies and renders one mf2 JSON document without storing it.
func runRender(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if name := cmd.Args().First(); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	opts := renderOptions{asJSON: cmd.Bool("json")}
	if cmd.IsSet("wrap") {
		wrap := cmd.Bool("wrap")
		opts.wrap = &wrap
	}
	return renderDocument(in, os.Stdout, cfg.Micropub, opts)
}

func renderDocument(in io.Reader, out io.Writer, mcfg internal.MicropubConfig, opts renderOptions) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	doc, err := mf2.Parse(data)
	if err != nil {
		return err
	}

	wrap := mcfg.WrapRoot
	if opts.wrap != nil {
		wrap = *opts.wrap
	}
	prev, err := micropub.Prepare(doc, mcfg.TemplateConfig(), render.Options{WrapRoot: wrap})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(prev)
	}
	_, err = fmt.Fprintf(out, "type: %s\ntemplate: %s\n\n%s\n", prev.Type, prev.Template, prev.Body)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "raido",
		Usage:   "Micropub endpoint that stores microformats2 posts as files with a searchable index",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: run,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:      "render",
				Usage:     "Classify and render an mf2 JSON document from a file or stdin",
				ArgsUsage: "[file]",
				Action:    runRender,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the result as JSON",
					},
					&cli.BoolFlag{
						Name:  "wrap",
						Usage: "Wrap the body in the microformat root element (overrides config)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
