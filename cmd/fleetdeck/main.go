package main

import "github.com/kantai-tool/fleetdeck/internal/adapters/cli"

func main() {
	cli.Execute()
}
