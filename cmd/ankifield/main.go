package main

import "ankifield/cmd/ankifield/cmd"

func main() {
	cmd.Execute()
}
