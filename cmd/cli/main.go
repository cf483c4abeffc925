package main

import "github.com/dmitrijs2005/moviesearch/internal/cli"

func main() {
	cli.Execute()
}
