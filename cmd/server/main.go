package main

import "esocial/internal/app/server"

func main() {
	server.Run()
}
