// This program performs administrative tasks against a running node.
package main

import "github.com/ardanlabs/forkchain/app/tooling/chainadm/cmd"

func main() {
	cmd.Execute()
}
