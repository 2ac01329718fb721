// Command badgectl backfills and inspects badge progress from the shell.
package main

import "github.com/N1femi/Thriva/internal/cli"

func main() {
	cli.Execute()
}
