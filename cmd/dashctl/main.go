package main

import "github.com/noah-isme/sma-dashboard/internal/cli"

func main() {
	cli.Execute()
}
