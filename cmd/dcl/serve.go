package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl/analysis"
	"github.com/rlch/dcl/lsp"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"lsp"},
		Usage:   "Run the language server on stdin and stdout",
		Action:  runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = s.logger.Sync() }()

	// An explicit schema applies to every document; otherwise each document
	// finds its own .dcl.yaml.
	var a *analysis.Analyzer

	if cmd.String("schema") != "" {
		a, err = s.analyzer()
		if err != nil {
			return err
		}
	}

	s.logger.Info("Starting dcl language server")

	return serve(ctx, s.logger, a, os.Stdin, os.Stdout)
}

func serve(ctx context.Context, logger *zap.Logger, a *analysis.Analyzer, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	client := protocol.ClientDispatcher(conn, logger)
	server := lsp.NewServer(client, logger, a)

	conn.Go(ctx, protocol.ServerHandler(server, nil))

	<-conn.Done()

	return conn.Err()
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
