// twig is the command-line front-end for twig database files.
//
// Usage:
//
//	twig <dbname> get <key>
//	twig <dbname> set <key> <value>
//	twig <dbname> delete <key>
//
// get writes the value to stdout. Diagnostics go to stderr.
//
// Exit codes:
//
//	0  ok
//	1  bad arguments
//	2  unknown verb
//	3  key not found
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dacapoday/twig"
	"github.com/dacapoday/twig/kv"
)

const (
	exitOK      = 0
	exitBadArgs = 1
	exitBadVerb = 2
	exitBadKey  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(stderr io.Writer) {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "\ttwig DBNAME get KEY")
	fmt.Fprintln(stderr, "\ttwig DBNAME set KEY VALUE")
	fmt.Fprintln(stderr, "\ttwig DBNAME delete KEY")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 3 || len(args) > 4 {
		usage(stderr)
		return exitBadArgs
	}

	dbname, verb, key := args[0], args[1], args[2]

	switch verb {
	case "get", "delete":
		if len(args) != 3 {
			usage(stderr)
			return exitBadArgs
		}
	case "set":
		if len(args) != 4 {
			usage(stderr)
			return exitBadArgs
		}
	default:
		usage(stderr)
		return exitBadVerb
	}

	db, err := kv.Open(dbname)
	if err != nil {
		fmt.Fprintf(stderr, "twig: %v\n", err)
		return exitBadArgs
	}
	defer db.Close()

	switch verb {
	case "get":
		val, err := db.Get(key)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprint(stdout, val)
	case "set":
		if err := db.Set(key, args[3]); err != nil {
			return fail(stderr, err)
		}
		if err := db.Commit(); err != nil {
			return fail(stderr, err)
		}
	case "delete":
		if err := db.Delete(key); err != nil {
			return fail(stderr, err)
		}
		if err := db.Commit(); err != nil {
			return fail(stderr, err)
		}
	}
	return exitOK
}

func fail(stderr io.Writer, err error) int {
	if errors.Is(err, twig.ErrNotFound) {
		fmt.Fprintln(stderr, "Key not found")
		return exitBadKey
	}
	fmt.Fprintf(stderr, "twig: %v\n", err)
	return exitBadArgs
}
