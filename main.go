package main

import (
	"os"
	_ "time/tzdata" // timezones must resolve on hosts without a zoneinfo database

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"

	"tweetsite/cmd"
)

func main() {
	if err := cmd.RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
