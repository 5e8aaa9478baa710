package main

import "github.com/oshokin/dhikr-alarm/cmd/dhikr-alarm/cmd"

func main() {
	cmd.Execute()
}
