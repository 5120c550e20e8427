package main

import "github.com/arborfs/flushnode/cmd/flushnoded/cmd"

func main() {
	cmd.Execute()
}
