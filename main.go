package main

import "github.com/kbeguinel/portfolio/cmd"

func main() {
	cmd.Execute()
}
