package main

import "github.com/stoik/emailapi/services/email-api/internal/app"

func main() {
	app.Execute()
}
