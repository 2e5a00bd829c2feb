package main

import "github.com/ragline-dev/ragline/internal/cli"

func main() {
	cli.Execute()
}
