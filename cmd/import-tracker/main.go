package main

import "github.com/ksagna/import-tracker/internal/cli"

func main() {
	cli.Execute()
}
