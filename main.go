package main

import (
	"github.com/kristyhoran/shovill-1/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
