package main

import "github.com/pders01/git-continuity/cmd"

func main() {
	cmd.Execute()
}
