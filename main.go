package main

import "github.com/dayuer/chatpacer/cmd"

func main() {
	cmd.Execute()
}
