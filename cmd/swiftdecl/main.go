package main

import "github.com/dejo1307/swiftdecl/internal/cli"

func main() {
	cli.Execute()
}
