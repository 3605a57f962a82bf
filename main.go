package main

import (
	"github.com/dreamerjackson/listcrawler/cmd"
)

func main() {
	cmd.Execute()
}
