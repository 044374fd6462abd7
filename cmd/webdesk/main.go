package main

import "github.com/bryanchriswhite/WebDesk/cmd/webdesk/commands"

func main() {
	commands.Execute()
}
