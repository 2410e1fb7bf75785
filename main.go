package main

import "github.com/hpi-schul-cloud/sc-app-deploy/cmd/root"

func main() {
	root.Execute()
}
