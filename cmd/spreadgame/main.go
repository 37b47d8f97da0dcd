package main

import "github.com/mcoot/spreadgame/internal/cli"

func main() {
	cli.Execute()
}
