package main

import "github.com/solkeen/marinade-anchor/internal/cli"

func main() {
	cli.Execute()
}
