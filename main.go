/*
Copyright © 2025 jesse galley <jesse@jessegalley.net>
*/
package main

import "github.com/jessegalley/fsyncbench/cmd"

func main() {
	cmd.Execute()
}
