// Command ingest validates and normalizes uploaded photos for talking-video
// generation, as a CLI or an HTTP service.
package main

import "github.com/talkingphoto-ai/ingest/cmd/ingest/cmd"

func main() {
	cmd.Execute()
}
