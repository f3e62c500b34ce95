// Command biomegen generates a procedural biome-map PNG. See internal/cmd
// for the generate (automated) and prompt (interactive) subcommands.
package main

import "biomegen/internal/cmd"

func main() {
	cmd.Execute()
}
