package main

import "github.com/nfrund/eventdesk/cmd/eventdesk-cli/cmd"

func main() {
	cmd.Execute()
}
