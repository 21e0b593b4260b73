package main

import (
	"errors"

	"github.com/jessevdk/go-flags"

	"kommunicate-mcp-go/internal/server"
)

// Options are the command line flags. Flags that are set override the config
// file and environment.
type Options struct {
	ConfigFile string `short:"f" long:"config" description:"path to a YAML config file"`
	Transport  string `long:"transport" choice:"http" choice:"stdio" description:"MCP transport"`
	Addr       string `long:"addr" description:"HTTP listen address"`
	LogLevel   string `long:"log-level" description:"log level (trace, debug, info, warn, error)"`
	Version    bool   `long:"version" description:"print the version and exit"`
}

// parseOptions parses args. ok is false when help was printed.
func parseOptions(args []string) (*Options, bool, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "kommunicate-mcp"
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(stdout)
			return opts, false, nil
		}
		return nil, false, err
	}
	return opts, true, nil
}

// apply overlays the flags that were given onto cfg.
func (o *Options) apply(cfg *server.Config) {
	if o.Transport != "" {
		cfg.Transport = o.Transport
	}
	if o.Addr != "" {
		cfg.Addr = o.Addr
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
}
