package main

import (
	"os"

	"github.com/PolarWolf314/jsonsig/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
