package main

import (
	"os"

	"github.com/bitfsorg/securestore-go/cmd/securestore/commands"
)

func main() {
	os.Exit(commands.Execute())
}
