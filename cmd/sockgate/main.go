package main

import "github.com/sockgate/sockgate/cmd/sockgate/cmd"

func main() {
	cmd.Execute()
}
