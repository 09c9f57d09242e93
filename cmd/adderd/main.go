// Command adderd runs an adder validation node: a gRPC validation
// service backed by the in-process validator, plus tooling over the
// local head database.
package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/blockberries/adder/config"
	"github.com/blockberries/adder/logging"
)

const (
	// DefaultName is the name of the binary.
	DefaultName = "adderd"
	// Version is reported by --version and logged at startup.
	Version = "0.1.0"

	envKey = "env"
)

// env is the state shared by every command, built once in Before.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = DefaultName
	cliApp.Usage = "validate and import blocks of the adder child-chain"
	cliApp.Version = Version
	cliApp.Commands = commands
	cliApp.Metadata = map[string]interface{}{}
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML configuration file (defaults apply when omitted)",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "log at debug level",
		},
	}
	cliApp.Before = func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return err
		}
		if c.Bool("debug") {
			cfg.LogLevel = logging.LevelDebug.String()
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		c.App.Metadata[envKey] = &env{
			cfg:    cfg,
			logger: logging.New(c.App.Writer, errWriter(c.App), level),
		}
		return nil
	}
	return cliApp
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.DefaultConfig()
		return cfg, cfg.ValidateBasic()
	}
	return config.Load(path)
}

func errWriter(a *cli.App) io.Writer {
	if a.ErrWriter != nil {
		return a.ErrWriter
	}
	return os.Stderr
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}
