package main

import "github.com/rustyeddy/bracketbot/internal/cli"

func main() {
	cli.Execute()
}
