// acp-console is an interactive console for exploring the ACP frame
// codec -- encode a frame, decode it back through a loopback session,
// inspect replay-window state -- without a daemon or network link.
//
// Genuinely wires github.com/reeflective/console, a dependency the BFD
// daemon's go.mod carries but never exercises (its own shell command is
// a hand-rolled bufio.Scanner loop; see cmd/acpctl/commands/shell.go).
package main

import (
	"fmt"
	"os"

	"github.com/reeflective/console"

	"github.com/northboundnetworks/acpgo/cmd/acp-console/repl"
)

func main() {
	app := console.New("acp-console")

	menu := app.ActiveMenu()
	menu.SetCommands(repl.Commands())

	if err := app.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "acp-console:", err)
		os.Exit(1)
	}
}
