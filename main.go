package main

import (
	"github.com/rubiojr/party/cmd"
	"github.com/rubiojr/party/compiler"
)

var version = "v0.1.0"

func main() {
	compiler.Version = version
	cmd.Execute(version)
}
