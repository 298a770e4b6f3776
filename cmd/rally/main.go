package main

import "github.com/tansive/rallyclient/internal/cli"

func main() {
	cli.Execute()
}
