package main

import "github.com/jmehdipour/contact-gateway/cmd"

func main() {
	cmd.Execute()
}
