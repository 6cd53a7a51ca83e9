package main

import (
	"os"

	"github.com/Doomsbay/InsdcKit/insdckit/cmd"
)

func main() {
	cmd.Execute(os.Args[1:])
}
