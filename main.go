package main

import "github.com/williamokano/gfs_rotator/pkg/cli"

func main() {
	cli.Execute()
}
