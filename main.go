package main

import "github.com/KaramelBytes/leadloom-cli/cmd"

func main() {
	cmd.Execute()
}
