package main

import "github.com/davarch/ci-dashboard/cmd/ci-dashboard/cli"

func main() {
	cli.Execute()
}
