// Command kvs-server runs the kvs TCP front end over a chosen engine.
package main

import (
	"fmt"
	"net"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/rezkam/kvs/engine"
	"github.com/rezkam/kvs/internal/config"
	"github.com/rezkam/kvs/internal/logging"
	"github.com/rezkam/kvs/server"
)

func main() {
	cfg, err := config.Load("config.yml")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("kvs-server", flag.ExitOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	engineFlag := fs.String("engine", string(cfg.Engine), "storage engine: log or embedded")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	kind := engine.Kind(*engineFlag)
	eng, err := engine.Open(cfg.DataDir, kind, engine.WithLogger(logger))
	if err != nil {
		logger.Sugar().Fatalf("open engine: %v", err)
	}
	defer eng.Close()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Sugar().Fatalf("listen on %s: %v", *addr, err)
	}
	defer ln.Close()

	logger.Sugar().Infof("%s running on %s", kind, *addr)

	srv := server.New(eng, logger)
	if err := srv.Serve(ln); err != nil {
		logger.Sugar().Fatalf("serve: %v", err)
	}
}
