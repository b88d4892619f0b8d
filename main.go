package main

import "github.com/journihealth/journi_backend/cmd"

func main() {
	cmd.Execute()
}
