package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"google.golang.org/grpc"
	"gopkg.in/urfave/cli.v1"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/chain"
	addergrpc "github.com/blockberries/adder/grpc"
	"github.com/blockberries/adder/local"
	"github.com/blockberries/adder/server"
	"github.com/blockberries/adder/stf"
	"github.com/blockberries/adder/store"
	"github.com/blockberries/adder/types"
)

var commands = []cli.Command{
	{
		Name:   "serve",
		Usage:  "serve the gRPC validation service",
		Action: cmdServe,
	},
	{
		Name:      "validate",
		Usage:     "validate one block against a parent head",
		ArgsUsage: "PARENT_HEAD_HEX BLOCK_HEX",
		Action:    cmdValidate,
	},
	{
		Name:      "genesis",
		Usage:     "print the genesis head",
		ArgsUsage: "[STATE]",
		Action:    cmdGenesis,
	},
	{
		Name:      "import",
		Usage:     "import blocks on top of the stored tip",
		ArgsUsage: "BLOCK... (STATE:ADD or canonical hex)",
		Action:    cmdImport,
	},
	{
		Name:      "export",
		Usage:     "print stored heads",
		ArgsUsage: "[FROM] [TO]",
		Action:    cmdExport,
	},
	{
		Name:      "revert",
		Usage:     "drop every head above NUMBER",
		ArgsUsage: "NUMBER",
		Action:    cmdRevert,
	},
	{
		Name:  "purge",
		Usage: "delete the head database",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "yes, y",
				Usage: "do not ask for confirmation",
			},
		},
		Action: cmdPurge,
	},
}

func cmdServe(c *cli.Context) error {
	e := getEnv(c)
	e.logger.Infof("%s %s", DefaultName, Version)
	e.logger.Infof("listen: %s", e.cfg.Listen)
	e.logger.Infof("memory: %d bytes, input %d@%d, arena %d@%d",
		e.cfg.MemorySize, e.cfg.InputSize, e.cfg.InputOffset, e.cfg.ArenaSize, e.cfg.ArenaOffset())

	conn, err := local.NewConnection(e.cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	lis, err := net.Listen("tcp", e.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", e.cfg.Listen, err)
	}

	srv := addergrpc.NewGRPCServer(conn, e.logger)
	gs := grpc.NewServer()
	srv.Register(gs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()

	select {
	case <-ctx.Done():
		e.logger.Infof("shutting down")
		gs.GracefulStop()
	case err = <-errCh:
	}

	stats := srv.Server().Stats()
	e.logger.Infof("served %d calls: %d valid, %d rejected, %d malformed",
		stats.Total(), stats.Validated, stats.Rejected, stats.Malformed)
	return err
}

func cmdValidate(c *cli.Context) error {
	e := getEnv(c)
	if c.NArg() != 2 {
		return errors.New("please give the following arguments: PARENT_HEAD_HEX BLOCK_HEX")
	}
	parent, err := decodeHex(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("parent head: %w", err)
	}
	block, err := decodeHex(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("block: %w", err)
	}

	conn, err := local.NewConnection(e.cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	outcome := server.New(conn, e.logger).Validate(context.Background(), types.ValidationParams{
		ParentHead: parent,
		BlockData:  block,
	})
	if !outcome.OK() {
		return fmt.Errorf("%s (%s): %s", outcome.Code.Status(), outcome.Code, outcome.Info)
	}

	head, err := types.DecodeHead(outcome.HeadData)
	if err != nil {
		return err
	}
	printHead(c, head)
	return nil
}

func cmdGenesis(c *cli.Context) error {
	e := getEnv(c)
	state := e.cfg.GenesisState
	if c.NArg() > 0 {
		s, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
		if err != nil {
			return fmt.Errorf("state: %w", err)
		}
		state = s
	}
	printHead(c, stf.Genesis(state))
	return nil
}

func cmdImport(c *cli.Context) error {
	e := getEnv(c)
	if c.NArg() < 1 {
		return errors.New("please give the following arguments: BLOCK [BLOCK]...")
	}
	blocks := make([]types.BlockData, 0, c.NArg())
	for _, arg := range c.Args() {
		b, err := parseBlock(arg)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}

	conn, err := local.NewConnection(e.cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	return withImporter(c, conn, func(im *chain.Importer) error {
		ctx := context.Background()
		for _, b := range blocks {
			head, err := im.Import(ctx, b)
			if err != nil {
				return err
			}
			printHead(c, head)
		}
		return nil
	})
}

func cmdExport(c *cli.Context) error {
	e := getEnv(c)
	from, to := uint64(0), ^uint64(0)
	if c.NArg() > 0 {
		n, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		from = n
	}
	if c.NArg() > 1 {
		n, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}
		to = n
	}

	s, err := store.OpenBolt(e.cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Iterate(from, to, func(head types.HeadData) error {
		printHead(c, head)
		return nil
	})
}

func cmdRevert(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("please give the following arguments: NUMBER")
	}
	number, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}

	return withImporter(c, stf.Validator{}, func(im *chain.Importer) error {
		head, err := im.Revert(context.Background(), number)
		if err != nil {
			return err
		}
		printHead(c, head)
		return nil
	})
}

func cmdPurge(c *cli.Context) error {
	e := getEnv(c)
	if !c.Bool("yes") {
		return fmt.Errorf("refusing to delete %s without --yes", e.cfg.DBPath)
	}
	if err := os.Remove(e.cfg.DBPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	e.logger.Infof("removed %s", e.cfg.DBPath)
	return nil
}

// withImporter opens the head database and an importer over it.
func withImporter(c *cli.Context, v adder.Validator, fn func(*chain.Importer) error) error {
	e := getEnv(c)
	e.logger.Debugf("db: %s", e.cfg.DBPath)

	s, err := store.OpenBolt(e.cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	im := chain.NewImporter(v, s, e.logger)
	if _, err := im.Open(context.Background(), e.cfg.GenesisState); err != nil {
		return err
	}
	return fn(im)
}

// parseBlock accepts STATE:ADD in decimal or the 16-byte canonical
// encoding in hex.
func parseBlock(s string) (types.BlockData, error) {
	if state, add, ok := strings.Cut(s, ":"); ok {
		st, err := strconv.ParseUint(state, 10, 64)
		if err != nil {
			return types.BlockData{}, fmt.Errorf("block %q: state: %w", s, err)
		}
		ad, err := strconv.ParseUint(add, 10, 64)
		if err != nil {
			return types.BlockData{}, fmt.Errorf("block %q: add: %w", s, err)
		}
		return types.BlockData{State: st, Add: ad}, nil
	}

	raw, err := decodeHex(s)
	if err != nil {
		return types.BlockData{}, fmt.Errorf("block %q: %w", s, err)
	}
	b, err := types.DecodeBlockData(raw)
	if err != nil {
		return types.BlockData{}, fmt.Errorf("block %q: %w", s, err)
	}
	return b, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func printHead(c *cli.Context, head types.HeadData) {
	fmt.Fprintf(c.App.Writer, "#%d hash=%s parent=%s post=%s encoded=%x\n",
		head.Number, head.Hash(), head.ParentHash, head.PostState, head.Encode())
}
