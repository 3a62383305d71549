package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/veritas-L2/mpt"
	"github.com/veritas-L2/mpt/config"
	"github.com/veritas-L2/mpt/storage"
)

// session is an opened store with the named trie loaded.
type session struct {
	log  *zap.Logger
	db   storage.DB
	trie *mpt.Trie
	name string
	hex  bool
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	path := ctx.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(ctx *cli.Context) (*zap.Logger, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.Logger.BuildLogger()
}

func openSession(ctx *cli.Context) (*session, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, cli.Exit(err, 1)
	}
	log, err := cfg.Logger.BuildLogger()
	if err != nil {
		return nil, cli.Exit(err, 1)
	}

	db, err := storage.NewStore(cfg.Storage, log)
	if err != nil {
		_ = log.Sync()
		return nil, cli.Exit(fmt.Errorf("could not open store: %w", err), 1)
	}

	name := ctx.String("name")
	tr, err := mpt.OpenNamedTrie(db, name)
	if err != nil {
		_ = db.Close()
		_ = log.Sync()
		return nil, cli.Exit(err, 1)
	}
	return &session{log: log, db: db, trie: tr, name: name, hex: ctx.Bool("hex")}, nil
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Error("failed to close store", zap.Error(err))
	}
	_ = s.log.Sync()
}

// decode parses a key or value argument.
func (s *session) decode(arg string) ([]byte, error) {
	return decodeArg(arg, s.hex)
}

func (s *session) encode(b []byte) string {
	return encodeArg(b, s.hex)
}

func decodeArg(arg string, isHex bool) ([]byte, error) {
	if !isHex {
		return []byte(arg), nil
	}
	if !strings.HasPrefix(arg, "0x") {
		arg = "0x" + arg
	}
	b, err := hexutil.Decode(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid hex argument %q: %w", arg, err)
	}
	return b, nil
}

func encodeArg(b []byte, isHex bool) string {
	if isHex {
		return hexutil.Encode(b)
	}
	return string(b)
}

func checkArgs(ctx *cli.Context, n int, variadic bool) error {
	if ctx.NArg() < n || (!variadic && ctx.NArg() > n) {
		return cli.Exit(fmt.Sprintf("expected arguments: %s", ctx.Command.ArgsUsage), 1)
	}
	return nil
}

func getValue(ctx *cli.Context) error {
	if err := checkArgs(ctx, 1, false); err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	key, err := s.decode(ctx.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	value, err := s.trie.Get(key)
	if err != nil {
		s.log.Error("get failed", zap.String("name", s.name), zap.Error(err))
		return cli.Exit(err, 1)
	}
	if value == nil {
		return cli.Exit("key not found", 1)
	}
	fmt.Fprintln(ctx.App.Writer, s.encode(value))
	return nil
}

func putValue(ctx *cli.Context) error {
	if err := checkArgs(ctx, 2, false); err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	key, err := s.decode(ctx.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	value, err := s.decode(ctx.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := s.trie.Insert(key, value); err != nil {
		s.log.Error("put failed", zap.String("name", s.name), zap.Error(err))
		return cli.Exit(err, 1)
	}
	return s.saveRoot(ctx)
}

func deleteValue(ctx *cli.Context) error {
	if err := checkArgs(ctx, 1, false); err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	key, err := s.decode(ctx.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	deleted, err := s.trie.Delete(key)
	if err != nil {
		s.log.Error("delete failed", zap.String("name", s.name), zap.Error(err))
		return cli.Exit(err, 1)
	}
	if !deleted {
		return cli.Exit("key not found", 1)
	}
	return s.saveRoot(ctx)
}

func (s *session) saveRoot(ctx *cli.Context) error {
	root, err := s.trie.SaveRoot(s.name)
	if err != nil {
		s.log.Error("failed to save root", zap.String("name", s.name), zap.Error(err))
		return cli.Exit(err, 1)
	}
	s.log.Info("saved root", zap.String("name", s.name), zap.String("root", root.Hex()))
	fmt.Fprintln(ctx.App.Writer, root.Hex())
	return nil
}

func printRoot(ctx *cli.Context) error {
	if err := checkArgs(ctx, 0, false); err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	root, err := s.trie.Root()
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, root.Hex())
	return nil
}

func proveKey(ctx *cli.Context) error {
	if err := checkArgs(ctx, 1, false); err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	key, err := s.decode(ctx.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	proof, err := s.trie.Prove(key)
	if err != nil {
		s.log.Error("prove failed", zap.String("name", s.name), zap.Error(err))
		return cli.Exit(err, 1)
	}
	for _, node := range proof {
		fmt.Fprintln(ctx.App.Writer, hexutil.Encode(node))
	}
	return nil
}

func verifyProof(ctx *cli.Context) error {
	if err := checkArgs(ctx, 3, true); err != nil {
		return err
	}
	log, err := newLogger(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = log.Sync() }()

	args := ctx.Args().Slice()
	rootBytes, err := decodeArg(args[0], true)
	if err != nil || len(rootBytes) != common.HashLength {
		return cli.Exit(fmt.Sprintf("invalid root %q", args[0]), 1)
	}
	root := common.BytesToHash(rootBytes)

	isHex := ctx.Bool("hex")
	key, err := decodeArg(args[1], isHex)
	if err != nil {
		return cli.Exit(err, 1)
	}
	proof := make([][]byte, 0, len(args)-2)
	for _, arg := range args[2:] {
		node, err := decodeArg(arg, true)
		if err != nil {
			return cli.Exit(err, 1)
		}
		proof = append(proof, node)
	}

	value, err := mpt.VerifyProof(root, key, proof)
	if err != nil {
		log.Warn("proof rejected", zap.String("root", root.Hex()), zap.Error(err))
		return cli.Exit(err, 1)
	}
	if value == nil {
		fmt.Fprintln(ctx.App.Writer, "absent")
		return nil
	}
	fmt.Fprintln(ctx.App.Writer, encodeArg(value, isHex))
	return nil
}

func dumpTrie(ctx *cli.Context) error {
	if err := checkArgs(ctx, 0, false); err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	count := 0
	err = s.trie.Iterate(func(key, value []byte) bool {
		fmt.Fprintf(ctx.App.Writer, "%s=%s\n", s.encode(key), s.encode(value))
		count++
		return true
	})
	if err != nil {
		s.log.Error("dump failed", zap.String("name", s.name), zap.Error(err))
		return cli.Exit(err, 1)
	}
	s.log.Debug("dumped trie", zap.String("name", s.name), zap.Int("pairs", count))
	return nil
}
