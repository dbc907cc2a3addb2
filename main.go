package main

import "github.com/notargets/golocalvol/cmd"

func main() {
	cmd.Execute()
}
