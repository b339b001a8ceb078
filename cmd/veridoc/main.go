package main

import (
	"github.com/veridoc-tech/veridoc/cmd/veridoc/cmd"
)

func main() {
	cmd.Execute()
}
