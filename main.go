package main

import "github.com/aae42/clippy-clippy/cmd"

func main() {
	cmd.Execute()
}
