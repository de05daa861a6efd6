// Command kvs operates directly on an engine in the current directory,
// with no server involved.
package main

import (
	"fmt"
	"os"

	"github.com/rezkam/kvs/engine"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	eng, err := engine.Open(dir, engine.KindUnspecified)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer eng.Close()

	switch os.Args[1] {
	case "set":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := eng.Set(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

	case "get":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		value, ok, err := eng.Get(os.Args[2])
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
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		if err := eng.Remove(os.Args[2]); err != nil {
			fmt.Println("Key not found")
			os.Exit(1)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs set KEY VALUE | get KEY | rm KEY")
}
