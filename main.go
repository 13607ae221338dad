package main

import "github.com/bloodmagesoftware/mesher/cmd"

func main() {
	cmd.Execute()
}
