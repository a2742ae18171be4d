package main

import "github.com/paleosieve/paleosieve-cli/cmd"

func main() {
	cmd.Execute()
}
