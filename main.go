package main

import "github.com/team-mirai-volunteer/video-processor-sub003/cmd"

func main() {
	cmd.Execute()
}
