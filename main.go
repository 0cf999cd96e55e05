package main

import (
	"github.com/piravelha/complua/cmd"
)

var version = "v0.1.0"

func main() {
	cmd.Execute(version)
}
