package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/imroc/req/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/polarityio/ripe/internal/config"
	"github.com/polarityio/ripe/internal/httpclient"
	"github.com/polarityio/ripe/internal/input"
	"github.com/polarityio/ripe/internal/output"
	"github.com/polarityio/ripe/internal/services"
	"github.com/polarityio/ripe/internal/services/ripe"
)

type clientFactory func(httpclient.Options) (*req.Client, error)

// deps holds fully-resolved runtime dependencies for a subcommand.
type deps struct {
	newClient clientFactory

	logger *slog.Logger
	cfg    *config.Config
	format output.Format
}

// build resolves config, logger and output format.
func (d *deps) build(flags *pflag.FlagSet, stderr io.Writer) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	d.cfg = cfg
	d.format = format
	d.logger = newLogger(stderr, cfg)
	d.logger.Debug("config loaded", "file", cfg.ConfigFile, "output", format)
	return nil
}

// newLogger returns a text logger at info level, debug with --verbose and
// trace with --trace.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case cfg.Trace:
		level = services.LevelTrace
	case cfg.Verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == services.LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}))
}

// newRipeClient builds the registry client from the request settings in the
// resolved config. TLS material is read once, here.
func (d *deps) newRipeClient() (*ripe.Client, error) {
	client, err := d.newClient(httpclient.Options{
		Proxy:              d.cfg.Proxy,
		UserAgent:          d.cfg.UserAgent,
		CertFile:           d.cfg.Cert,
		KeyFile:            d.cfg.Key,
		Passphrase:         d.cfg.Passphrase,
		CAFile:             d.cfg.CA,
		RejectUnauthorized: d.cfg.RejectUnauthorized,
		Logger:             d.logger,
		Debug:              d.cfg.Verbose || d.cfg.Trace,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}
	if proxy := httpclient.ResolveProxy(d.cfg.Proxy); proxy != "" {
		d.logger.Debug("using proxy", "proxy", proxy)
	}
	if !d.cfg.RejectUnauthorized {
		d.logger.Warn("TLS certificate verification is disabled")
	}
	return ripe.NewClient(client, d.logger), nil
}

// lookup parses inputs into entities and runs them as one batch.
func (d *deps) lookup(ctx context.Context, inputs []string) (ripe.BatchResult, error) {
	entities, err := services.ParseEntities(inputs)
	if err != nil {
		return ripe.BatchResult{}, err
	}
	client, err := d.newRipeClient()
	if err != nil {
		return ripe.BatchResult{}, err
	}
	results, err := client.DoLookup(ctx, entities)
	if err != nil {
		return ripe.BatchResult{}, err
	}
	return ripe.BatchResult{Results: results}, nil
}

// resolveInputs returns positional args, or reads identifiers from stdin when
// no args are provided. Returns an error if stdin is an interactive terminal
// with no args, or if nothing was read.
func resolveInputs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	r := cmd.InOrStdin()
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // uintptr→int is safe for file descriptors
		return nil, fmt.Errorf("%w: pass an argument or pipe stdin", services.ErrInvalidInput)
	}
	inputs, err := input.Read(r)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no identifiers on stdin", services.ErrInvalidInput)
	}
	return inputs, nil
}

// writeResult formats and writes a result to w, defanged when requested.
func (d *deps) writeResult(w io.Writer, result any) error {
	if d.cfg.Defang {
		w = &output.DefangWriter{Inner: w}
	}
	if err := output.Write(w, d.format, result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
