package main

import "github.com/reelab/reel/internal/cli"

func main() {
	cli.Execute()
}
