package main

import "github.com/rohnsht/PhoneNumber/cmd"

func main() {
	cmd.Execute()
}
