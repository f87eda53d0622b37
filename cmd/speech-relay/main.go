package main

import "speech-relay/cmd/speech-relay/cmd"

func main() {
	cmd.Execute()
}
