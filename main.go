package main

import "github.com/soundroomhq/soundroom/cmd"

func main() {
	cmd.Execute()
}
