package main

import "github.com/iksnae/fliey/cmd"

func main() {
	cmd.Execute()
}
