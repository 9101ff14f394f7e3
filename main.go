package main

import "github.com/agentic-research/sqlite-helper/cmd"

func main() {
	cmd.Execute()
}
