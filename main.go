package main

import "github.com/lepinkainen/booklist/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
