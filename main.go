/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/gorillaworkout/dupoin-sheet-converter/cmd"

func main() {
	cmd.Execute()
}
