// acpctl is the command-line client for the ACP frame codec: it encodes
// and decodes frames, manages session keys in a keystore, and serves
// codec metrics, all operating directly against the local library --
// no daemon required.
package main

import (
	"github.com/northboundnetworks/acpgo/cmd/acpctl/commands"
)

func main() {
	commands.Execute()
}
