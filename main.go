package main

import "github.com/medkadi/boutik-scrap/cmd"

func main() {
	cmd.Execute()
}
