package main

import "github.com/frgrisk/tidemark/cmd"

func main() {
	cmd.Execute()
}
