package main

import "wallet-backend/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
