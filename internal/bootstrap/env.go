package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv reads .env files into the process environment. Variables that are
// already set are left untouched.
func Loadenv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
