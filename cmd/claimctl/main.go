package main

import "github.com/awmpietro/golang-claim-evaluation-case/internal/cli"

func main() {
	cli.Execute()
}
