package main

import "github.com/arcdex/arcdex/internal/cli"

func main() {
	cli.Execute()
}
