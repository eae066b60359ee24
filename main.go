package main

import "starklings/cli"

func main() {
	cli.Execute()
}
