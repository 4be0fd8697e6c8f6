package main

import "github.com/Manu343726/iridium/cmd"

func main() {
	cmd.Execute()
}
