// Command agroexport runs the AgroExport catalog service and its admin tools.
package main

import "github.com/marshallshelly/agroexport/cmd/agroexport/commands"

func main() {
	commands.Execute()
}
