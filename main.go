package main

import "StrokeCollector/cmd/collector/commands"

func main() {
	commands.Execute()
}
