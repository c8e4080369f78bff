package main

import "github.com/Dmetrikx/goCharacterChatter/cmd"

func main() {
	cmd.Execute()
}
