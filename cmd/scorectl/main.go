package main

import (
	"github.com/ignyos/scorekeeper/internal/cli"
)

func main() {
	cli.Execute()
}
