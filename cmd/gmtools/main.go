// Command gmtools is the terminal client for the document analysis backend.
package main

import "github.com/gm-tools/gmtools/internal/cli"

func main() {
	cli.Execute()
}
