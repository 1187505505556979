package main

import "microblog-server/cmd"

func main() {
	cmd.Run()
}
