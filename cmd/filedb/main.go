// Command filedb inspects and edits filedb collections from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/filedb/filedb/storage"
)

func main() {
	cli := newApp(storage.NewOSFileSystem(), os.Stdout, os.Stderr)
	if err := cli.rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
