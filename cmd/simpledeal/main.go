package main

import "github.com/simpledeal-network/simpledeal/internal/cli"

func main() {
	cli.Execute()
}
