package main

import "github.com/lexscout/lexscout/cmd"

func main() {
	cmd.Execute()
}
