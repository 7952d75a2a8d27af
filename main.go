package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/iburimskiy/backdrop/cmd"
)

func main() {
	cmd.Execute()
}
