package main

import "github.com/agentic-research/avbmatch/cmd"

func main() {
	cmd.Execute()
}
