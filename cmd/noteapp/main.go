// Command noteapp runs the NoteApp client core: a local gateway over the
// session mirror plus a few session commands.
//
//	@title			NoteApp Client Gateway
//	@version		1.0
//	@description	Local gateway over the NoteApp session mirror, route guard and interaction cache.
//	@BasePath		/
package main

import "github.com/noteapp/client/cmd/noteapp/cmd"

func main() {
	cmd.Execute()
}
