package main

import "walletscore/internal/cli"

func main() {
	cli.Execute()
}
