package main

import "github.com/concierge/concierge/cmd"

func main() {
	cmd.Execute()
}
