package main

import "github.com/Sydwelll/nft-marketplace-backend/cmd"

func main() {
	cmd.Execute()
}
