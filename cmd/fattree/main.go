package main

import (
	"github.com/iti/fattree/cmd"
)

func main() {
	cmd.Execute()
}
