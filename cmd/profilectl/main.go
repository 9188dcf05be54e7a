package main

import "github.com/dmitrijs2005/profilekeeper/internal/ctl"

func main() {
	ctl.Execute()
}
