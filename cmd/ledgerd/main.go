package main

import "github.com/settleng/goledgerd/internal/cli"

func main() {
	cli.Execute()
}
