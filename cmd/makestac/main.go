package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/EDITO-Infra/makestac/util"
)

func main() {
	godotenv.Load()
	util.LogAudit(&(util.BasicLogContext{}), util.LogAuditInput{Actor: "main()", Action: "startup", Actee: "self", Message: "Application Startup", Severity: util.INFO})
	if err := createCliApp().Run(os.Args); err != nil {
		util.LogAlert(&(util.BasicLogContext{}), "Error executing CLI app: "+err.Error())
		os.Exit(1)
	}
}
