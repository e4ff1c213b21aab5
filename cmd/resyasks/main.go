package main

import "github.com/example/resy-asks/cmd"

func main() {
	cmd.Execute()
}
