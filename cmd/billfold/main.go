package main

import "github.com/billfold-cli/billfold/internal/cli"

func main() {
	cli.Execute()
}
