// Command kvs-client sends a single command to a running kvs-server.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/rezkam/kvs/client"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:4000", "server address")

	switch sub {
	case "set":
		args := parseArgs(fs, os.Args[2:], 2)
		cli := client.New(*addr)
		if err := cli.Set(args[0], args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

	case "get":
		args := parseArgs(fs, os.Args[2:], 1)
		cli := client.New(*addr)
		value, ok, err := cli.Get(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("Key not found")
			return
		}
		fmt.Println(value)

	case "rm":
		args := parseArgs(fs, os.Args[2:], 1)
		cli := client.New(*addr)
		if err := cli.Remove(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "Key not found")
			os.Exit(1)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func parseArgs(fs *flag.FlagSet, argv []string, want int) []string {
	if err := fs.Parse(argv); err != nil {
		os.Exit(1)
	}
	positional := fs.Args()
	if len(positional) != want {
		usage()
		os.Exit(1)
	}
	return positional
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client set KEY VALUE --addr HOST:PORT | get KEY --addr HOST:PORT | rm KEY --addr HOST:PORT")
}
