package main

import "github.com/roomwarden/roomwarden/cmd"

func main() {
	cmd.Execute()
}
