package main

import "github.com/crich46/spotify-audio-features/cmd"

func main() {
	cmd.Execute()
}
