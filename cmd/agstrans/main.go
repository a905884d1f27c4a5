package main

import "agstrans/internal/cli"

func main() {
	cli.Execute()
}
