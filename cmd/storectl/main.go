package main

import "github.com/Skotchmaster/general_store/cmd/storectl/commands"

func main() {
	commands.Execute()
}
