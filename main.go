package main

import "github.com/mkarlsen/uipilot/cmd"

func main() {
	cmd.Execute()
}
