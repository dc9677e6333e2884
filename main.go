package main

import "postman-sync/internal/cli"

func main() {
	cli.Execute()
}
